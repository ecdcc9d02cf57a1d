// Package jobfile loads imposition job files.
//
// A job file has four sections: [job], [page_size] (inches), [leftpage] and
// [rightpage] (placement matrices). INI is the native format; YAML and JSON
// files with the same shape are accepted by extension. Every key can be
// overridden from the environment as IMPOSER_<SECTION>_<KEY>.
package jobfile

// File is the decoded contents of a job file.
type File struct {
	Job       JobSection        `mapstructure:"job" yaml:"job" json:"job"`
	PageSize  PageSizeSection   `mapstructure:"page_size" yaml:"page_size" json:"page_size"`
	LeftPage  *PlacementSection `mapstructure:"leftpage" yaml:"leftpage,omitempty" json:"leftpage,omitempty"`
	RightPage *PlacementSection `mapstructure:"rightpage" yaml:"rightpage,omitempty" json:"rightpage,omitempty"`
}

// JobSection is the [job] section.
type JobSection struct {
	Name               string `mapstructure:"name" yaml:"name" json:"name"`
	Source             string `mapstructure:"source" yaml:"source" json:"source"`
	OutputDirectory    string `mapstructure:"output_directory" yaml:"output_directory" json:"output_directory"`
	PagesPerSheet      int    `mapstructure:"pages_per_sheet" yaml:"pages_per_sheet" json:"pages_per_sheet"`
	SheetsPerSignature int    `mapstructure:"sheets_per_signature" yaml:"sheets_per_signature" json:"sheets_per_signature"`

	// Output is the legacy switch: true writes one consolidated file, false
	// one file per signature. OutputMode wins when both are set.
	Output     string `mapstructure:"output" yaml:"output,omitempty" json:"output,omitempty"`
	OutputMode string `mapstructure:"output_mode" yaml:"output_mode,omitempty" json:"output_mode,omitempty"`
}

// PageSizeSection is the output sheet size in inches. Zero derives the size
// from the source's first page.
type PageSizeSection struct {
	Width  float64 `mapstructure:"width" yaml:"width" json:"width"`
	Height float64 `mapstructure:"height" yaml:"height" json:"height"`
}

// PlacementSection is a [leftpage] or [rightpage] section. Offsets are in
// points.
type PlacementSection struct {
	XScalingFactor float64 `mapstructure:"x_scaling_factor" yaml:"x_scaling_factor" json:"x_scaling_factor"`
	YScalingFactor float64 `mapstructure:"y_scaling_factor" yaml:"y_scaling_factor" json:"y_scaling_factor"`
	XOffset        float64 `mapstructure:"x_offset" yaml:"x_offset" json:"x_offset"`
	YOffset        float64 `mapstructure:"y_offset" yaml:"y_offset" json:"y_offset"`
	XRotation      float64 `mapstructure:"x_rotation" yaml:"x_rotation" json:"x_rotation"`
	YRotation      float64 `mapstructure:"y_rotation" yaml:"y_rotation" json:"y_rotation"`
}
