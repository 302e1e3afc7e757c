// scenery/database.go
// Copyright(c) 2024-2026 jetbridge contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmp/jetbridge/log"
	"github.com/mmp/jetbridge/math"
	"github.com/mmp/jetbridge/rand"
	"github.com/mmp/jetbridge/util"

	"github.com/brunoga/deep"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// MaxLibraryID is the highest id in the shared jetway library.
const MaxLibraryID = 27

// candidateCell quantizes a position to roughly 1km cells; candidate
// lookups within the same cell hit the LRU cache.
type candidateCell struct {
	lat, lon int32
}

func cellForPosition(lat, lon float32) candidateCell {
	return candidateCell{lat: int32(math.Floor(lat * 100)), lon: int32(math.Floor(lon * 100))}
}

// Database holds all loaded sceneries plus the shared jetway library and
// answers "which jetways are near this position" queries.
type Database struct {
	Frame     Frame
	Sceneries []*Scenery

	library [MaxLibraryID + 1]*Jetway

	// Library jetways instantiated at runtime, keyed by the object
	// placement so each placement is configured only once. The slice
	// preserves instantiation order; candidate enumeration must be
	// stable so that distance ties between jetways resolve the same
	// way on every query.
	libraryJetways map[[2]float32]*Jetway
	libraryOrder   []*Jetway

	candidates *lru.Cache[candidateCell, []*Jetway]

	curves map[string]*CurveTable

	lg *log.Logger
}

// NewDatabase loads the jetway library and all scenery description files
// and prepares the local-frame geometry. A missing or unparsable library
// is fatal; an individual scenery that fails to parse or is empty is
// skipped with a warning.
func NewDatabase(libraryPath string, sceneryPaths []string, fr Frame, lg *log.Logger) (*Database, error) {
	db := &Database{
		Frame:          fr,
		libraryJetways: make(map[[2]float32]*Jetway),
		curves:         make(map[string]*CurveTable),
		lg:             lg,
	}
	db.candidates, _ = lru.New[candidateCell, []*Jetway](64)

	ld, err := ParseLibraryDescription(libraryPath)
	if err != nil {
		return nil, fmt.Errorf("jetway library: %w", err)
	}
	for i := range ld.Jetways {
		jd := &ld.Jetways[i]
		if jd.ID < 1 || jd.ID > MaxLibraryID {
			lg.Warnf("library jetway %q: id %d out of range, ignored", jd.Name, jd.ID)
			continue
		}
		if db.library[jd.ID] != nil {
			lg.Warnf("library jetway id %d defined twice, keeping the first", jd.ID)
			continue
		}
		db.library[jd.ID] = jd.Jetway()
	}

	descs := make([]*SceneryDescription, len(sceneryPaths))
	var g errgroup.Group
	for i, path := range sceneryPaths {
		g.Go(func() error {
			d, err := loadSceneryDescription(path, lg)
			if err != nil {
				lg.Warnf("%s: %v; skipping", path, err)
				return nil
			}
			descs[i] = d
			return nil
		})
	}
	g.Wait()

	for i, d := range descs {
		if d == nil {
			continue
		}
		sc, err := db.build(d)
		if err != nil {
			lg.Warnf("%s: %v; skipping", sceneryPaths[i], err)
			continue
		}
		db.Sceneries = append(db.Sceneries, sc)
		lg.Infof("loaded scenery %q: %d jetways, %d stands, %d objects",
			sc.Name, len(sc.Jetways), len(sc.Stands), len(sc.Objects))
	}

	// Associate each scenery jetway with the stand it serves, once all
	// sceneries (and so all stands) are in. A jetway more than 100m from
	// the nearest stand serves none.
	for _, sc := range db.Sceneries {
		for _, jw := range sc.Jetways {
			if s := db.findStand(jw.X, jw.Z); s != nil &&
				math.Distance2f([2]float32{jw.X, jw.Z}, [2]float32{s.X, s.Z}) < 100 {
				jw.Stand = s
			}
		}
	}

	return db, nil
}

// loadSceneryDescription parses a scenery description, going through the
// msgpack cache so that repeated runs skip the JSON (and possibly zstd)
// work.
func loadSceneryDescription(path string, lg *log.Logger) (*SceneryDescription, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	cachePath := filepath.Join("scenery", filepath.Base(path)+".msgpack")
	var cached SceneryDescription
	if t, err := util.CacheRetrieveObject(cachePath, &cached); err == nil && t.After(fi.ModTime()) {
		return &cached, nil
	}

	d, err := ParseSceneryDescription(path)
	if err != nil {
		return nil, err
	}
	if err := util.CacheStoreObject(cachePath, d); err != nil {
		lg.Warnf("%s: unable to cache: %v", path, err)
	}
	return d, nil
}

// build converts a description into runtime form: instantiate the types,
// resolve library geometry and animation references, place everything in
// the local frame and compute the bounding boxes.
func (db *Database) build(d *SceneryDescription) (*Scenery, error) {
	sc := &Scenery{Name: d.Name}

	for i := range d.Jetways {
		jw := d.Jetways[i].Jetway()
		if jw.LibraryID != 0 {
			id := jw.LibraryID
			jw.LibraryID = 0 // so FillLibraryValues runs
			if db.library[id] == nil {
				db.lg.Warnf("jetway %q references unknown library id %d, skipped", jw.Name, id)
				continue
			}
			jw.FillLibraryValues(db.library[id], id)
		}
		jw.PlaceInFrame(db.Frame)
		jw.Reset()
		sc.Jetways = append(sc.Jetways, jw)
	}

	for i := range d.Stands {
		s := d.Stands[i].Stand()
		s.PlaceInFrame(db.Frame)
		sc.Stands = append(sc.Stands, s)
	}

	objects := make(map[string]*Object)
	for i := range d.Objects {
		o := d.Objects[i].Object()
		o.PlaceInFrame(db.Frame)
		sc.Objects = append(sc.Objects, o)
		objects[o.ID] = o
	}

	for i := range d.Curves {
		c, err := d.Curves[i].CurveTable()
		if err != nil {
			db.lg.Warnf("curve %q: %v, skipped", d.Curves[i].Name, err)
			continue
		}
		if _, ok := db.curves[c.Name]; ok {
			db.lg.Warnf("curve %q defined twice, keeping the first", c.Name)
			continue
		}
		db.curves[c.Name] = c
	}

	for i := range d.Animations {
		ad := &d.Animations[i]
		c, ok := db.curves[ad.Curve]
		if !ok {
			db.lg.Warnf("animation %q references unknown curve %q, skipped", ad.Label, ad.Curve)
			continue
		}
		sc.Anims = append(sc.Anims, &Animation{
			Label:  ad.Label,
			Title:  ad.Title,
			Curve:  c,
			Object: objects[ad.Object],
		})
	}

	// Animation-only packages (windsocks, seasonal props) are valid
	// sceneries; only one with nothing usable at all is dropped.
	if len(sc.Jetways) == 0 && len(sc.Stands) == 0 && len(sc.Anims) == 0 {
		return nil, fmt.Errorf("%q: no jetways, stands or animations", d.Name)
	}

	sc.computeBBox()
	return sc, nil
}

// Curve returns a named curve table, or nil.
func (db *Database) Curve(name string) *CurveTable { return db.curves[name] }

// FindCandidates returns the jetways that might serve an aircraft at the
// given position: scenery bounding box, per-jetway bounding box and a true
// distance check, in increasing order of cost. Results are cached per
// quantized cell.
func (db *Database) FindCandidates(lat, lon float32) []*Jetway {
	cell := cellForPosition(lat, lon)
	if jws, ok := db.candidates.Get(cell); ok {
		return jws
	}

	p := db.Frame.ToLocal(lat, lon)

	var jws []*Jetway
	for _, sc := range db.Sceneries {
		if !sc.InBBox(lat, lon) {
			continue
		}
		for _, jw := range sc.Jetways {
			if !jw.InBBox(lat, lon) {
				continue
			}
			if math.Distance2f(p, [2]float32{jw.X, jw.Z}) > FarSkip {
				continue
			}
			jws = append(jws, jw)
		}
	}
	for _, jw := range db.libraryOrder {
		if math.Distance2f(p, [2]float32{jw.X, jw.Z}) <= FarSkip {
			jws = append(jws, jw)
		}
	}

	db.candidates.Add(cell, jws)
	return jws
}

// findStand returns the stand a library jetway placement belongs to: the
// closest stand that has the jetway on its left side.
func (db *Database) findStand(x, z float32) *Stand {
	var minStand *Stand
	dist := float32(1.0e10)

	lat, lon := db.localToGlobal(x, z)
	for _, sc := range db.Sceneries {
		if !sc.InBBox(lat, lon) {
			continue
		}
		for _, s := range sc.Stands {
			localX, localZ := s.Global2Stand(x, z)
			if localX > 2 { // on the right
				continue
			}
			if d := math.Length2f([2]float32{localX, localZ}); d < dist {
				dist = d
				minStand = s
			}
		}
	}
	return minStand
}

func (db *Database) localToGlobal(x, z float32) (lat, lon float32) {
	lat = db.Frame.Lat - z/LatToMeters
	lon = db.Frame.Lon + x/(LatToMeters*math.Cos(math.Radians(db.Frame.Lat)))
	return
}

// InstantiateLibrary configures a runtime instance of a library jetway
// for an object placed at the given local position and heading. The
// parked pose is randomized a little so that rows of identical jetways
// don't look cloned. Placements far from the aircraft are not worth
// configuring and return nil.
func (db *Database) InstantiateLibrary(id int, x, z, y, psi float32, planeX, planeZ float32) *Jetway {
	if id < 1 || id > MaxLibraryID || db.library[id] == nil {
		return nil
	}
	if jw, ok := db.libraryJetways[[2]float32{x, z}]; ok {
		return jw
	}
	if math.Distance2f([2]float32{x, z}, [2]float32{planeX, planeZ}) > 0.5*FarSkip {
		return nil
	}

	jw := deep.MustCopy(db.library[id])
	jw.X, jw.Z, jw.Y, jw.Psi = x, z, y, psi
	jw.Latitude, jw.Longitude = db.localToGlobal(x, z)
	jw.computeBBox()

	if stand := db.findStand(x, z); stand != nil {
		jw.Stand = stand

		// The cabin parks roughly perpendicular to the stand.
		delta := math.ReduceAngle((stand.Heading + 90) - jw.Psi)
		jw.InitialRot2 = (0.2 + 0.8*(0.01*float32(rand.Intn(100)))) * delta

		name := stand.ID
		if i := strings.IndexByte(name, ' '); i >= 0 {
			name = name[:i]
		}
		if len(name) > 10 {
			name = name[:10]
		}
		jw.Name = name + "_A"
	} else {
		jw.InitialRot2 = 5
		jw.Name = fmt.Sprintf("lib_%d", id)
	}

	jw.InitialExtent = 0.3
	jw.InitialRot3 = -3 * 0.01 * float32(rand.Intn(100))
	jw.Reset()

	db.libraryJetways[[2]float32{x, z}] = jw
	db.libraryOrder = append(db.libraryOrder, jw)
	db.candidates.Purge()

	db.lg.Infof("library jetway %q configured: x: %.3f, z: %.3f, psi: %.1f, initialRot2: %.1f",
		jw.Name, jw.X, jw.Z, jw.Psi, jw.InitialRot2)
	return jw
}

// CountAtStand returns how many jetways are parked at the given stand.
func (db *Database) CountAtStand(stand *Stand) int {
	var n int
	for _, jw := range db.libraryJetways {
		if jw.Stand == stand {
			n++
		}
	}
	for _, sc := range db.Sceneries {
		for _, jw := range sc.Jetways {
			if jw.Stand == stand {
				n++
			}
		}
	}
	return n
}

// NumJetways returns the total count of loaded jetways.
func (db *Database) NumJetways() int {
	var n int
	for _, sc := range db.Sceneries {
		n += len(sc.Jetways)
	}
	return n + len(db.libraryJetways)
}
