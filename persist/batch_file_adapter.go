package persist

import "github.com/oarkflow/permit"

// BatchFileAdapter carries the BatchAdapter surface for a file-backed policy.
// Both batch mutators are rejected wholesale so the engine surfaces the
// unsupported operation instead of a half-applied batch.
type BatchFileAdapter struct {
	*FileAdapter
}

func NewBatchFileAdapter(filePath string) *BatchFileAdapter {
	return &BatchFileAdapter{FileAdapter: NewFileAdapter(filePath)}
}

func (a *BatchFileAdapter) AddPolicies(sec, ptype string, rules [][]string) error {
	return permit.ErrUnsupportedOperation
}

func (a *BatchFileAdapter) RemovePolicies(sec, ptype string, rules [][]string) error {
	return permit.ErrUnsupportedOperation
}
