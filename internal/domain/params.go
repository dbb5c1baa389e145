package domain

const (
	DefaultFrameRate = 30
	DefaultBatchSize = 64
)

// ProcessingParams is the capture processing configuration.
// Wire keys follow the client protocol (fps / batch_size).
type ProcessingParams struct {
	FrameRate int `json:"fps"`
	BatchSize int `json:"batch_size"`
}

func DefaultParams() ProcessingParams {
	return ProcessingParams{FrameRate: DefaultFrameRate, BatchSize: DefaultBatchSize}
}

// ParamsPatch is a partial update; nil fields are left unchanged.
type ParamsPatch struct {
	FrameRate *int `json:"fps"`
	BatchSize *int `json:"batch_size"`
}

// Validate checks every provided field without applying anything,
// so a rejected patch never half-mutates a store.
func (p ParamsPatch) Validate() error {
	if p.FrameRate != nil && *p.FrameRate <= 0 {
		return ErrInvalidParameter
	}
	if p.BatchSize != nil && *p.BatchSize <= 0 {
		return ErrInvalidParameter
	}
	return nil
}

// Apply merges the patch into params. Call Validate first.
func (p ParamsPatch) Apply(params ProcessingParams) ProcessingParams {
	if p.FrameRate != nil {
		params.FrameRate = *p.FrameRate
	}
	if p.BatchSize != nil {
		params.BatchSize = *p.BatchSize
	}
	return params
}
