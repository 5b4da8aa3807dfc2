package feature

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Output file names inside the map directory.
const (
	FullDataFile = "data_full.js"
	DataFile     = "data.js"
)

// FullOrder is the order of the well known buckets in the full data file.
// Buckets outside this list follow in registration order.
var FullOrder = []string{
	Regions,
	Collectables,
	Bounds,
	"CCollectable",
	"CBookMark",
	"CLootCrateSpawnPoint",
	"CLootCrateSpawnPointGroup",
	"CPlayerSpawnPoint",
	"CPOI",
	"CPOI.nest_marker_poi",
}

var varNames = map[string]string{
	Regions:                     "region_data",
	Collectables:                "collectable_data",
	Bounds:                      "mdic_data",
	"CCollectable":              "c_collectable_data",
	"CBookMark":                 "c_book_mark_data",
	"CLootCrateSpawnPoint":      "c_loot_crate_spawn_point_data",
	"CLootCrateSpawnPointGroup": "c_loot_crate_spawn_point_group_data",
	"CPlayerSpawnPoint":         "c_player_spawn_point_data",
	"CPOI":                      "c_poi",
	"CPOI.nest_marker_poi":      "c_poi_nest_marker_poi",
}

// VarName is the javascript global holding bucket key.
func VarName(key string) string {
	if v, ok := varNames[key]; ok {
		return v
	}
	var sb strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		switch {
		case r == '.' || r == '-' || r == ' ':
			sb.WriteByte('_')
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			// class names start with a C prefix: CPOI -> c_poi
			classPrefix := i == 1 && prev == 'C'
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) || classPrefix {
				sb.WriteByte('_')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String() + "_data"
}

// WriteVars writes one `var name = [...];` assignment per key.
func WriteVars(w io.Writer, b *Buckets, keys []string) error {
	for _, k := range keys {
		data, err := json.MarshalIndent(b.Get(k), "", "    ")
		if err != nil {
			return errors.Wrapf(err, "marshal bucket %q", k)
		}
		if _, err := fmt.Fprintf(w, "var %s = %s;\n", VarName(k), data); err != nil {
			return err
		}
	}
	return nil
}

// FullKeys lists the keys written to the full data file.
func FullKeys(b *Buckets) []string {
	keys := append([]string{}, FullOrder...)
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range b.Keys() {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// Emit writes the full data file and the collectables-only data file to dir.
func Emit(dir string, b *Buckets) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrapf(err, "create '%s'", dir)
	}
	if err := writeFile(filepath.Join(dir, FullDataFile), b, FullKeys(b)); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, DataFile), b, []string{Collectables})
}

func writeFile(path string, b *Buckets, keys []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create '%s'", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := WriteVars(w, b, keys); err != nil {
		return errors.Wrapf(err, "write '%s'", path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "write '%s'", path)
	}
	return f.Close()
}
