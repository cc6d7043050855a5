package fl

import "fmt"

// AggregationMethod is the algorithm the backend uses to merge client
// updates into the global model.
type AggregationMethod string

const (
	FedAvg  AggregationMethod = "FedAvg"
	FedDC   AggregationMethod = "FedDC"
	FedProx AggregationMethod = "FedProx"
)

// ParseAggregationMethod returns FedAvg for an empty string.
func ParseAggregationMethod(s string) (AggregationMethod, error) {
	switch m := AggregationMethod(s); m {
	case "":
		return FedAvg, nil
	case FedAvg, FedDC, FedProx:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAggregationMethod, s)
	}
}
