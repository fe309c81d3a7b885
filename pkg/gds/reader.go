package gds

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/OpenTraceLab/gdsrect/pkg/geom"
)

// ReadFile reads a GDSII stream file, gzip-compressed or not
func ReadFile(filename string) (*Library, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file)
}

// Read parses a GDSII stream. A gzip-compressed stream is detected by its
// header and decompressed.
func Read(r io.Reader) (*Library, error) {
	src, err := decompress(r)
	if err != nil {
		return nil, fmt.Errorf("gds: %w", err)
	}

	rd := &streamReader{r: src}
	lib, err := rd.library()
	if err != nil {
		return nil, fmt.Errorf("gds: %w", err)
	}
	return lib, nil
}

type streamReader struct {
	r     io.Reader
	count int
}

func (sr *streamReader) next() (record, error) {
	rec, err := readRecord(sr.r)
	if err != nil {
		if err == io.EOF {
			return record{}, fmt.Errorf("unexpected end of stream after %d records", sr.count)
		}
		return record{}, err
	}
	sr.count++
	return rec, nil
}

func (sr *streamReader) library() (*Library, error) {
	lib := &Library{UserUnit: DefaultUserUnit, MeterUnit: DefaultMeterUnit}

	rec, err := sr.next()
	if err != nil {
		return nil, err
	}
	if rec.Type != RecHeader {
		return nil, fmt.Errorf("not a GDSII stream: first record is 0x%02X", uint8(rec.Type))
	}

	for {
		rec, err := sr.next()
		if err != nil {
			return nil, err
		}

		switch rec.Type {
		case RecBgnLib:
			lib.Modified, lib.Accessed = timestamps(rec)
		case RecLibName:
			if lib.Name, err = rec.text(); err != nil {
				return nil, err
			}
		case RecUnits:
			units := rec.real8s()
			if len(units) < 2 {
				return nil, fmt.Errorf("UNITS record has %d values", len(units))
			}
			lib.UserUnit, lib.MeterUnit = units[0], units[1]
		case RecBgnStr:
			s, err := sr.structure(rec)
			if err != nil {
				return nil, err
			}
			lib.Structures = append(lib.Structures, s)
		case RecEndLib:
			return lib, nil
		}
	}
}

func (sr *streamReader) structure(begin record) (*Structure, error) {
	s := &Structure{}
	s.Modified, s.Accessed = timestamps(begin)

	for {
		rec, err := sr.next()
		if err != nil {
			return nil, err
		}

		switch rec.Type {
		case RecStrName:
			if s.Name, err = rec.text(); err != nil {
				return nil, err
			}
		case RecBoundary, RecBox, RecPath, RecSRef, RecARef, RecText, RecNode:
			el, err := sr.element(rec.Type)
			if err != nil {
				return nil, fmt.Errorf("structure %q: %w", s.Name, err)
			}
			if err := el.addTo(s); err != nil {
				return nil, fmt.Errorf("structure %q: %w", s.Name, err)
			}
		case RecEndStr:
			return s, nil
		}
	}
}

// element collects the records of one element up to ENDEL
type element struct {
	kind     RecordType
	layer    int
	datatype int
	width    int64
	pathType int
	bgnExtn  int64
	endExtn  int64
	sname    string
	strans   Strans
	cols     int
	rows     int
	xy       []geom.Point
	str      string
}

func (sr *streamReader) element(kind RecordType) (*element, error) {
	el := &element{kind: kind}
	for {
		rec, err := sr.next()
		if err != nil {
			return nil, err
		}

		switch rec.Type {
		case RecEndEl:
			return el, nil
		case RecLayer:
			el.layer, err = rec.firstInt16()
		case RecDatatype, RecTextType, RecBoxType, RecNodeType:
			el.datatype, err = rec.firstInt16()
		case RecWidth:
			el.width, err = rec.firstInt32()
		case RecPathType:
			el.pathType, err = rec.firstInt16()
		case RecBgnExtn:
			el.bgnExtn, err = rec.firstInt32()
		case RecEndExtn:
			el.endExtn, err = rec.firstInt32()
		case RecSName:
			el.sname, err = rec.text()
		case RecString:
			el.str, err = rec.text()
		case RecStrans:
			if len(rec.Body) >= 2 {
				el.strans.Reflect = rec.Body[0]&0x80 != 0
				el.strans.AbsMag = rec.Body[1]&0x04 != 0
				el.strans.AbsAng = rec.Body[1]&0x02 != 0
			}
		case RecMag:
			el.strans.Mag, err = rec.firstReal8()
		case RecAngle:
			el.strans.Angle, err = rec.firstReal8()
		case RecColRow:
			v := rec.int16s()
			if len(v) < 2 {
				return nil, fmt.Errorf("COLROW record has %d values", len(v))
			}
			el.cols, el.rows = int(v[0]), int(v[1])
		case RecXY:
			v := rec.int32s()
			el.xy = make([]geom.Point, 0, len(v)/2)
			for i := 0; i+1 < len(v); i += 2 {
				el.xy = append(el.xy, geom.Point{X: int64(v[i]), Y: int64(v[i+1])})
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

func (el *element) addTo(s *Structure) error {
	layer := LayerID{Layer: el.layer, Datatype: el.datatype}

	switch el.kind {
	case RecBoundary, RecBox:
		if len(el.xy) < 3 {
			return fmt.Errorf("boundary on %v has %d points", layer, len(el.xy))
		}
		s.Boundaries = append(s.Boundaries, Boundary{Layer: layer, Points: geom.Polygon(el.xy)})

	case RecPath:
		if len(el.xy) < 2 {
			return fmt.Errorf("path on %v has %d points", layer, len(el.xy))
		}
		s.Paths = append(s.Paths, Path{
			Layer:    layer,
			Width:    el.width,
			PathType: el.pathType,
			BeginExt: el.bgnExtn,
			EndExt:   el.endExtn,
			Points:   el.xy,
		})

	case RecText:
		if len(el.xy) < 1 {
			return fmt.Errorf("text %q on %v has no position", el.str, layer)
		}
		s.Texts = append(s.Texts, Text{Layer: layer, Position: el.xy[0], String: el.str, Strans: el.strans})

	case RecSRef:
		if len(el.xy) < 1 {
			return fmt.Errorf("reference to %q has no origin", el.sname)
		}
		s.Refs = append(s.Refs, Ref{Name: el.sname, Strans: el.strans, Origin: el.xy[0]})

	case RecARef:
		if len(el.xy) < 3 || el.cols <= 0 || el.rows <= 0 {
			return fmt.Errorf("array reference to %q is malformed", el.sname)
		}
		origin := el.xy[0]
		s.Refs = append(s.Refs, Ref{
			Name:   el.sname,
			Strans: el.strans,
			Origin: origin,
			Cols:   el.cols,
			Rows:   el.rows,
			ColStep: geom.Point{
				X: (el.xy[1].X - origin.X) / int64(el.cols),
				Y: (el.xy[1].Y - origin.Y) / int64(el.cols),
			},
			RowStep: geom.Point{
				X: (el.xy[2].X - origin.X) / int64(el.rows),
				Y: (el.xy[2].Y - origin.Y) / int64(el.rows),
			},
		})
	}
	return nil
}

// timestamps decodes the modification and access times of BGNLIB/BGNSTR
func timestamps(rec record) (time.Time, time.Time) {
	v := rec.int16s()
	if len(v) < 12 {
		return time.Time{}, time.Time{}
	}
	conv := func(t []int16) time.Time {
		year := int(t[0])
		if year < 1900 {
			year += 1900
		}
		return time.Date(year, time.Month(t[1]), int(t[2]), int(t[3]), int(t[4]), int(t[5]), 0, time.UTC)
	}
	return conv(v[:6]), conv(v[6:12])
}
