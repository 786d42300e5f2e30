package mcpserver

import (
	"fmt"
	"strings"

	"taskdoc/internal/domain"
)

// requireString returns a non-blank string argument.
func requireString(args map[string]any, key string) (string, error) {
	v, _ := args[key].(string)
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// blockTypeArg reads an optional block type, defaulting to paragraph.
func blockTypeArg(args map[string]any, key string) (domain.BlockType, error) {
	v, _ := args[key].(string)
	if v == "" {
		return domain.BlockTypeParagraph, nil
	}
	t, ok := domain.ParseBlockType(v)
	if !ok {
		return "", fmt.Errorf("unknown block type %q (valid: %s)", v, blockTypeList())
	}
	return t, nil
}

func blockTypeList() string {
	names := make([]string, len(domain.BlockTypes))
	for i, t := range domain.BlockTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
