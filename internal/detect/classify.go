package detect

import (
	"strings"

	"github.com/verte-zerg/masterdata/internal/model"
	"github.com/verte-zerg/masterdata/internal/textnorm"
)

// Classify maps a filename to its document type. Planned keywords win over
// completed, completed over order.
func Classify(name string) model.DocType {
	n := textnorm.Normalize(name)
	switch {
	case strings.Contains(n, "PLANLANAN") || strings.Contains(n, "ZIYARET PLANI"):
		return model.DocPlanned
	case strings.Contains(n, "YAPILAN"):
		return model.DocCompleted
	case strings.Contains(n, "SIPARIS"):
		return model.DocOrder
	default:
		return model.DocUnknown
	}
}
