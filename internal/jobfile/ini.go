package jobfile

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-viper/encoding/ini"
	"github.com/spf13/viper"
)

// iniCodec reads and writes the native format. Only lines that start with
// ; or # are comments, so a value such as "Vol #2.pdf" is kept whole.
func iniCodec() ini.Codec {
	return ini.Codec{
		LoadOptions: ini.LoadOptions{IgnoreInlineComment: true},
	}
}

// newViper returns a viper instance for path with the INI codec registered.
// Anything that is not YAML or JSON is read as INI.
func newViper(path string, logger *slog.Logger) (*viper.Viper, error) {
	codecs := viper.NewCodecRegistry()
	if err := codecs.RegisterCodec("ini", iniCodec()); err != nil {
		return nil, fmt.Errorf("failed to register ini codec: %w", err)
	}

	v := viper.NewWithOptions(
		viper.WithCodecRegistry(codecs),
		viper.WithLogger(logger),
	)
	v.SetConfigFile(path)
	if isINI(path) {
		v.SetConfigType("ini")
	}
	return v, nil
}

// encodeINI renders f as INI sections.
func encodeINI(f *File) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	var sections map[string]any
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, err
	}
	return iniCodec().Encode(sections)
}
