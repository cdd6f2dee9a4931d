package tool

import (
	"errors"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var errEmptyArgs = errors.New("missing arguments")

// splitFirstField splits raw argument text into its first whitespace-delimited
// field and the remainder. The remainder keeps its internal spacing but loses
// leading whitespace.
func splitFirstField(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	idx := strings.IndexAny(raw, " \t")
	if idx < 0 {
		return raw, ""
	}
	return raw[:idx], strings.TrimLeft(raw[idx:], " \t")
}

// decodeArgs decodes a generic argument map into a typed request struct.
func decodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}
