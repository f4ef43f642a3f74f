package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/recalc/internal/errors"
	"github.com/vango-dev/recalc/pkg/exprjson"
	"github.com/vango-dev/recalc/pkg/recalc"
)

// sheet maps dotted variable names to expression documents.
type sheet map[string]exprjson.Node

// readSheet parses a JSON or YAML sheet file, chosen by extension.
func readSheet(path string) (sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E020").WithSubject(path).Wrap(err)
	}
	var sh sheet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &sh)
	default:
		err = json.Unmarshal(data, &sh)
	}
	if err != nil {
		return nil, errors.New("E003").WithSubject(path).Wrap(err)
	}
	return sh, nil
}

// names returns the sheet keys in lexical order.
func (sh sheet) names() []string {
	names := make([]string, 0, len(sh))
	for name := range sh {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// define resolves a dotted name to a Variable, creating scopes on the way.
func define(scope *recalc.Scope, name string) (*recalc.Variable, error) {
	segs := strings.Split(name, ".")
	for _, seg := range segs[:len(segs)-1] {
		if seg == "" {
			return nil, fmt.Errorf("empty segment in %q", name)
		}
		scope = scope.Child(seg)
	}
	last := segs[len(segs)-1]
	if last == "" {
		return nil, fmt.Errorf("empty segment in %q", name)
	}
	return scope.Define(last), nil
}
