package sde

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tidwall/gjson"

	"eftb/internal/graph"
	"eftb/internal/logger"
)

// Raw input file names inside the raw directory.
const (
	StarmapFile    = "starmap.json"
	SmartGatesFile = "smartgates.json"
	NamesFile      = "solarsystems.json"
)

type rawSystem struct {
	ID       graph.SystemID
	RegionID graph.RegionID
	X, Y, Z  float64
}

// rawGate is a fixed gate from the starmap jump list or a player gate from
// the smart gate dump.
type rawGate struct {
	From, To graph.SystemID
	Kind     graph.LinkKind
}

// Raw holds everything parsed from the raw dumps before links are built.
type Raw struct {
	Systems []rawSystem
	Gates   []rawGate
	Names   map[graph.SystemID]string
}

func readJSON(path string) (gjson.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%s: invalid JSON", path)
	}
	return gjson.ParseBytes(data), nil
}

// parseStarmap reads solar systems and fixed gates from the client starmap
// extract. Jump types 0 and 1 are gates; anything else is skipped.
func parseStarmap(doc gjson.Result, raw *Raw) error {
	systems := doc.Get("solarSystems")
	if !systems.IsObject() {
		return fmt.Errorf("starmap: missing solarSystems object")
	}
	var perr error
	systems.ForEach(func(key, value gjson.Result) bool {
		id, err := strconv.ParseUint(key.String(), 10, 64)
		if err != nil {
			perr = fmt.Errorf("starmap: system key %q: %w", key.String(), err)
			return false
		}
		center := value.Get("center").Array()
		if len(center) != 3 {
			perr = fmt.Errorf("starmap: system %d: center has %d coordinates", id, len(center))
			return false
		}
		raw.Systems = append(raw.Systems, rawSystem{
			ID:       graph.SystemID(id),
			RegionID: graph.RegionID(value.Get("regionID").Uint()),
			X:        center[0].Float(),
			Y:        center[1].Float(),
			Z:        center[2].Float(),
		})
		return true
	})
	if perr != nil {
		return perr
	}

	doc.Get("jumps").ForEach(func(_, j gjson.Result) bool {
		from := graph.SystemID(j.Get("fromSystemID").Uint())
		to := graph.SystemID(j.Get("toSystemID").Uint())
		switch t := j.Get("jumpType").Int(); t {
		case 0, 1:
			raw.Gates = append(raw.Gates, rawGate{From: from, To: to, Kind: graph.FixedGate})
		default:
			logger.Info("Build", fmt.Sprintf("%d -> %d has unknown jump type %d, skipped", from, to, t))
		}
		return true
	})
	return nil
}

// parseSmartGates reads linked player gates. Each entry is one direction.
func parseSmartGates(doc gjson.Result, raw *Raw) {
	doc.ForEach(func(_, g gjson.Result) bool {
		from, to := g.Get("from").Uint(), g.Get("to").Uint()
		if from == 0 || to == 0 {
			logger.Warn("Build", fmt.Sprintf("Smart gate %s (%s) has no destination, skipped",
				g.Get("itemId").String(), g.Get("name").String()))
			return true
		}
		raw.Gates = append(raw.Gates, rawGate{From: graph.SystemID(from), To: graph.SystemID(to), Kind: graph.PlayerGate})
		return true
	})
}

// ParseNames reads a names document. Both an array of {"id","name"} objects
// and the world API map keyed by id (with solarSystemId/solarSystemName
// fields) are accepted.
func ParseNames(doc gjson.Result) map[graph.SystemID]string {
	names := make(map[graph.SystemID]string)
	doc.ForEach(func(key, v gjson.Result) bool {
		id := v.Get("id").Uint()
		if id == 0 {
			id = v.Get("solarSystemId").Uint()
		}
		if id == 0 && key.Exists() {
			id, _ = strconv.ParseUint(key.String(), 10, 64)
		}
		name := v.Get("name").String()
		if name == "" {
			name = v.Get("solarSystemName").String()
		}
		if id != 0 && name != "" {
			names[graph.SystemID(id)] = name
		}
		return true
	})
	return names
}

// ReadNames parses a names file from disk.
func ReadNames(path string) (map[graph.SystemID]string, error) {
	doc, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	return ParseNames(doc), nil
}

// ReadRaw parses the raw dumps in dir. The smart gate file is optional.
func ReadRaw(dir string) (*Raw, error) {
	raw := &Raw{}

	logger.Info("Build", "Loading starmap...")
	doc, err := readJSON(filepath.Join(dir, StarmapFile))
	if err != nil {
		return nil, fmt.Errorf("read starmap: %w", err)
	}
	if err := parseStarmap(doc, raw); err != nil {
		return nil, err
	}

	logger.Info("Build", "Loading smart gates...")
	doc, err = readJSON(filepath.Join(dir, SmartGatesFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("Build", fmt.Sprintf("File %s not found, building without player gates", SmartGatesFile))
	case err != nil:
		return nil, fmt.Errorf("read smart gates: %w", err)
	default:
		parseSmartGates(doc, raw)
	}

	logger.Info("Build", "Loading system names...")
	raw.Names, err = ReadNames(filepath.Join(dir, NamesFile))
	if err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}
	return raw, nil
}
