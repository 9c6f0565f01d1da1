package export

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Optimize validates a finished PDF and rewrites it with shared resources
// deduplicated.
func Optimize(rs io.ReadSeeker, w io.Writer) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Optimize(rs, w, conf); err != nil {
		return fmt.Errorf("optimize pdf: %w", err)
	}
	return nil
}
