package request

type SweepRequest struct {
	Limit   *int `json:"limit" binding:"omitempty,min=1,max=5000"`
	Workers *int `json:"workers" binding:"omitempty,min=1,max=64"`
}

// Resolve fills unset fields from the configured defaults.
func (r SweepRequest) Resolve(defaultLimit, defaultWorkers int) (limit, workers int) {
	limit, workers = defaultLimit, defaultWorkers
	if r.Limit != nil {
		limit = *r.Limit
	}
	if r.Workers != nil {
		workers = *r.Workers
	}
	return limit, workers
}
