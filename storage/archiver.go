package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MichaelPain/FutHaxball-sub001/models"
)

const (
	jsonContentType = "application/json"
	archivePrefix   = "tournaments/"
)

// Archive points at the exported copies of a finished tournament.
type Archive struct {
	TournamentURL string `json:"tournamentUrl"`
	StandingsURL  string `json:"standingsUrl"`
}

// Archiver exports completed tournaments to object storage.
type Archiver struct {
	uploader FileUploader
}

func NewArchiver(uploader FileUploader) *Archiver {
	return &Archiver{uploader: uploader}
}

func archiveKeys(t *models.Tournament) (tournamentKey, standingsKey string) {
	prefix := fmt.Sprintf("%s%s/v%d", archivePrefix, t.ID, t.Version)
	return prefix + "/tournament.json", prefix + "/standings.json"
}

// Archive uploads the aggregate and its final standings side by side. If either
// upload fails, whatever did land is removed again.
func (a *Archiver) Archive(ctx context.Context, t *models.Tournament, final []models.Standing) (*Archive, error) {
	tournamentDoc, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}
	if final == nil {
		final = []models.Standing{}
	}
	standingsDoc, err := json.Marshal(final)
	if err != nil {
		return nil, fmt.Errorf("failed to encode standings of tournament %s: %w", t.ID, err)
	}

	tournamentKey, standingsKey := archiveKeys(t)
	var (
		mu       sync.Mutex
		uploaded []string
		archive  Archive
	)
	upload := func(ctx context.Context, key string, doc []byte, location *string) error {
		res, err := a.uploader.Upload(ctx, key, jsonContentType, bytes.NewReader(doc))
		if err != nil {
			return err
		}
		mu.Lock()
		uploaded = append(uploaded, res.Key)
		*location = res.Location
		mu.Unlock()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return upload(gctx, tournamentKey, tournamentDoc, &archive.TournamentURL) })
	g.Go(func() error { return upload(gctx, standingsKey, standingsDoc, &archive.StandingsURL) })
	if err := g.Wait(); err != nil {
		for _, key := range uploaded {
			if delErr := a.uploader.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				err = fmt.Errorf("%w (cleanup of %s also failed: %v)", err, key, delErr)
			}
		}
		return nil, fmt.Errorf("failed to archive tournament %s: %w", t.ID, err)
	}
	return &archive, nil
}
