package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Capture/internal/core"
	"github.com/dkeye/Capture/internal/domain"
)

// paramStore holds the live processing configuration. Both fields are
// read and written under one lock, so no reader ever sees a half-applied
// update.
type paramStore struct {
	mu  sync.RWMutex
	cur domain.ProcessingParams
}

func NewParameterStore() core.ParameterStore {
	return &paramStore{cur: domain.DefaultParams()}
}

func (s *paramStore) Get() domain.ProcessingParams {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *paramStore) Update(patch domain.ParamsPatch) (domain.ProcessingParams, error) {
	if err := patch.Validate(); err != nil {
		return domain.ProcessingParams{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = patch.Apply(s.cur)
	log.Info().Str("module", "app.params").Int("fps", s.cur.FrameRate).Int("batch_size", s.cur.BatchSize).Msg("processing parameters updated")
	return s.cur, nil
}
