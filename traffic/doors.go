// traffic/doors.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package traffic

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/mmp/jetbridge/util"
)

// MaxDoors is the most boarding doors we serve per aircraft.
const MaxDoors = 3

// DoorInfoMap maps "ICAO type + door number" (e.g. "A3212") to the door
// position; aircraft data files often carry bogus door coordinates so a
// curated table takes precedence.
type DoorInfoMap map[string]Door

// LoadDoorInfo reads a door info file with lines of the form
//
//	ICAO door x y z
//
// where door is 1-based; '#' starts a comment line.
func LoadDoorInfo(path string) (DoorInfoMap, error) {
	r, err := util.LoadFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	m := make(DoorInfoMap)
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		line := strings.TrimRight(scan.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var icao string
		var d int
		var x, y, z float32
		if n, _ := fmt.Sscanf(line, "%s %d %f %f %f", &icao, &d, &x, &y, &z); n != 5 {
			continue
		}
		if d < 1 || d > MaxDoors {
			return nil, fmt.Errorf("%s: invalid door number %d", line, d)
		}

		m[fmt.Sprintf("%.4s%d", icao, d)] = Door{X: x, Y: y, Z: z}
	}
	return m, scan.Err()
}

// Doors assembles the door list for an aircraft type, lowest door first,
// stopping at the first gap.
func (m DoorInfoMap) Doors(icao string) []Door {
	var doors []Door
	for d := 1; d <= MaxDoors; d++ {
		di, ok := m[fmt.Sprintf("%.4s%d", icao, d)]
		if !ok {
			break
		}
		doors = append(doors, di)
	}
	return doors
}
