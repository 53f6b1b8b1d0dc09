package input

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// TrigMap is a per-channel offset table loaded once at construction for
// the TrigMap node. The file format is a flat "<prefix><channel>
// <offset>" text table, one entry per line; blank lines and lines
// starting with '#' are skipped.
type TrigMap struct {
	offsets map[uint32]float64
}

// LoadTrigMap reads path from fs and returns the parsed offset table.
// Trigger-map files are read once and never written.
func LoadTrigMap(fs afero.Fs, path, prefix string) (*TrigMap, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trigmap: open %s: %w", path, err)
	}
	defer f.Close()

	tm := &TrigMap{offsets: make(map[uint32]float64)}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("trigmap: %s:%d: expected 2 fields, got %d", path, lineNo, len(fields))
		}
		key := strings.TrimPrefix(fields[0], prefix)
		channel, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("trigmap: %s:%d: bad channel %q: %w", path, lineNo, fields[0], err)
		}
		offset, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("trigmap: %s:%d: bad offset %q: %w", path, lineNo, fields[1], err)
		}
		tm.offsets[uint32(channel)] = offset
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trigmap: %s: %w", path, err)
	}
	return tm, nil
}

// Offset returns the offset registered for channel, or 0 if absent.
func (tm *TrigMap) Offset(channel uint32) float64 {
	return tm.offsets[channel]
}
