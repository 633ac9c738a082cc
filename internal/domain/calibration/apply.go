package calibration

import "github.com/okian/autocal/internal/domain/model"

// Apply maps each axis through out = in*scale + offset. Pure: the input
// table is left untouched, row count and column order are preserved.
// Applying the same parameters twice compounds them; the orchestrator
// calibrates raw data exactly once.
func Apply(table model.Samples, scale, offset [3]float64) model.Samples {
	out := model.NewSamples(table.Len())
	for k := 0; k < 3; k++ {
		src := table.Axis(k)
		dst := out.Axis(k)
		for i := range src {
			dst[i] = src[i]*scale[k] + offset[k]
		}
	}
	return out
}

// ApplyInverse undoes Apply: out = (in - offset) / scale. All scale
// components must be non-zero.
func ApplyInverse(table model.Samples, scale, offset [3]float64) model.Samples {
	out := model.NewSamples(table.Len())
	for k := 0; k < 3; k++ {
		src := table.Axis(k)
		dst := out.Axis(k)
		for i := range src {
			dst[i] = (src[i] - offset[k]) / scale[k]
		}
	}
	return out
}
