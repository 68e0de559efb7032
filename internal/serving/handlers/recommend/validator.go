package recommend

import (
	"github.com/myshop/affinity/internal/repositories/vector"
)

func validateFindSimilarRequest(request *FindSimilarRequest, dimension int) (bool, string) {
	if request.Space != vector.UserSpace && request.Space != vector.ProductSpace {
		return false, "space must be user_embeddings or product_embeddings"
	}
	if len(request.Vector) == 0 {
		return false, "vector is required"
	}
	if len(request.Vector) != dimension {
		return false, "vector has wrong dimension"
	}
	if request.Limit < 0 {
		return false, "limit must not be negative"
	}
	return true, ""
}
