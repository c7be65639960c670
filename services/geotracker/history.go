package geotracker

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// History is the append-only track log: one JSON encoded TrackPoint per line.
//
// When Retention is positive the file is compacted to the newest Retention
// points once it grows 10% beyond that.
type History struct {
	Path      string
	Retention int

	lock  sync.Mutex
	count int // lines in file, -1 when unknown
}

func NewHistory(path string, retention int) *History {
	return &History{Path: path, Retention: retention, count: -1}
}

// Append a point to the end of the history.
func (h *History) Append(p TrackPoint) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	line, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(h.Path), 0755); err != nil {
		return errors.Wrap(err, "creating history directory")
	}
	f, err := os.OpenFile(h.Path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, "writing history")
	}

	if h.count < 0 {
		points, err := h.read()
		if err != nil {
			return err
		}
		h.count = len(points)
	} else {
		h.count++
	}
	if h.Retention > 0 && h.count > h.Retention+h.Retention/10 {
		return h.compact()
	}
	return nil
}

// Read the whole history, oldest first. A missing file is an empty history.
func (h *History) Read() ([]TrackPoint, error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	points, err := h.read()
	if err == nil {
		h.count = len(points)
	}
	return points, err
}

func (h *History) read() ([]TrackPoint, error) {
	points := []TrackPoint{}
	f, err := os.Open(h.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return points, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var p TrackPoint
		if err := json.Unmarshal(line, &p); err != nil {
			// a torn write from a concurrent appender
			log.WithFields(log.Fields{"path": h.Path, "line": n}).Warnln("Skipping bad history line:", err)
			continue
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading history")
	}
	return points, nil
}

// compact rewrites the file with the newest Retention points. The new file
// is written alongside and renamed over the old one.
func (h *History) compact() error {
	points, err := h.read()
	if err != nil {
		return err
	}
	if len(points) > h.Retention {
		points = points[len(points)-h.Retention:]
	}

	tmp, err := os.CreateTemp(filepath.Dir(h.Path), filepath.Base(h.Path)+".*")
	if err != nil {
		return errors.Wrap(err, "compacting history")
	}
	defer os.Remove(tmp.Name())
	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, p := range points {
		if err := enc.Encode(p); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "compacting history")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "compacting history")
	}
	if err := os.Rename(tmp.Name(), h.Path); err != nil {
		return errors.Wrap(err, "compacting history")
	}
	log.WithField("path", h.Path).Debugf("Compacted history to %d points", len(points))
	h.count = len(points)
	return nil
}
