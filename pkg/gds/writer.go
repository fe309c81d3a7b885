package gds

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/OpenTraceLab/gdsrect/pkg/geom"
)

const streamVersion = 600

// WriteFile writes the library to a GDSII stream file. Names ending in .gz
// get a gzip-compressed stream.
func WriteFile(filename string, lib *Library) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	write := Write
	if Compressed(filename) {
		write = writeCompressed
	}
	if err := write(file, lib); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write serializes the library as a GDSII stream
func Write(w io.Writer, lib *Library) error {
	bw := bufio.NewWriter(w)
	rw := &recordWriter{w: bw}

	rw.int16s(RecHeader, streamVersion)
	rw.int16s(RecBgnLib, stampValues(lib.Modified, lib.Accessed)...)
	rw.text(RecLibName, lib.Name)
	rw.real8s(RecUnits, lib.UserUnit, lib.MeterUnit)

	for _, s := range lib.Structures {
		writeStructure(rw, s)
	}
	rw.empty(RecEndLib)

	if rw.err != nil {
		return fmt.Errorf("gds: %w", rw.err)
	}
	return bw.Flush()
}

func writeStructure(rw *recordWriter, s *Structure) {
	rw.int16s(RecBgnStr, stampValues(s.Modified, s.Accessed)...)
	rw.text(RecStrName, s.Name)

	for _, b := range s.Boundaries {
		if len(b.Points) < 3 {
			rw.fail(fmt.Errorf("structure %q: boundary on %v has %d points", s.Name, b.Layer, len(b.Points)))
			return
		}
		rw.empty(RecBoundary)
		writeLayer(rw, RecDatatype, b.Layer)
		pts := append(append(geom.Polygon(nil), b.Points...), b.Points[0])
		writeXY(rw, pts...)
		rw.empty(RecEndEl)
	}

	for _, p := range s.Paths {
		rw.empty(RecPath)
		writeLayer(rw, RecDatatype, p.Layer)
		if p.PathType != 0 {
			rw.int16s(RecPathType, p.PathType)
		}
		if p.Width != 0 {
			rw.int32s(RecWidth, p.Width)
		}
		if p.PathType == 4 {
			rw.int32s(RecBgnExtn, p.BeginExt)
			rw.int32s(RecEndExtn, p.EndExt)
		}
		writeXY(rw, p.Points...)
		rw.empty(RecEndEl)
	}

	for _, ref := range s.Refs {
		if ref.IsArray() {
			rw.empty(RecARef)
		} else {
			rw.empty(RecSRef)
		}
		rw.text(RecSName, ref.Name)
		writeStrans(rw, ref.Strans)
		if ref.IsArray() {
			rw.int16s(RecColRow, ref.Cols, ref.Rows)
			o := ref.Origin
			writeXY(rw, o,
				geom.Point{X: o.X + int64(ref.Cols)*ref.ColStep.X, Y: o.Y + int64(ref.Cols)*ref.ColStep.Y},
				geom.Point{X: o.X + int64(ref.Rows)*ref.RowStep.X, Y: o.Y + int64(ref.Rows)*ref.RowStep.Y},
			)
		} else {
			writeXY(rw, ref.Origin)
		}
		rw.empty(RecEndEl)
	}

	for _, t := range s.Texts {
		rw.empty(RecText)
		writeLayer(rw, RecTextType, t.Layer)
		writeStrans(rw, t.Strans)
		writeXY(rw, t.Position)
		rw.text(RecString, t.String)
		rw.empty(RecEndEl)
	}

	rw.empty(RecEndStr)
}

func writeLayer(rw *recordWriter, second RecordType, l LayerID) {
	rw.int16s(RecLayer, l.Layer)
	rw.int16s(second, l.Datatype)
}

func writeXY(rw *recordWriter, pts ...geom.Point) {
	vals := make([]int64, 0, 2*len(pts))
	for _, p := range pts {
		vals = append(vals, p.X, p.Y)
	}
	rw.int32s(RecXY, vals...)
}

func writeStrans(rw *recordWriter, s Strans) {
	if s.isIdentity() && !s.AbsMag && !s.AbsAng {
		return
	}
	var flags [2]byte
	if s.Reflect {
		flags[0] |= 0x80
	}
	if s.AbsMag {
		flags[1] |= 0x04
	}
	if s.AbsAng {
		flags[1] |= 0x02
	}
	rw.write(RecStrans, DataBitArray, flags[:])
	if s.Mag != 0 && s.Mag != 1 {
		rw.real8s(RecMag, s.Mag)
	}
	if s.Angle != 0 {
		rw.real8s(RecAngle, math.Mod(s.Angle, 360))
	}
}

func stampValues(mod, acc time.Time) []int {
	if mod.IsZero() {
		mod = time.Now().UTC()
	}
	if acc.IsZero() {
		acc = mod
	}
	conv := func(t time.Time) []int {
		return []int{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()}
	}
	return append(conv(mod), conv(acc)...)
}
