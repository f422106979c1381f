package grid

import (
	"encoding/csv"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
)

const (
	TargetsFile = "targets.csv"
	AgentsFile  = "agents.csv"
)

// SaveWorld writes the target and agent cells of w into dir, one "x,y" row
// per entry in creation order. Value weighted worlds add a value column to
// the target rows.
func SaveWorld(dir string, w *World) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating world directory: %w", err)
	}
	targets := make([][]string, len(w.Targets))
	for i, t := range w.Targets {
		row := []string{strconv.Itoa(t.X), strconv.Itoa(t.Y)}
		if w.ValueWeighted {
			row = append(row, strconv.FormatFloat(t.Value, 'g', -1, 64))
		}
		targets[i] = row
	}
	if err := writeRows(path.Join(dir, TargetsFile), targets); err != nil {
		return err
	}
	agents := make([][]string, len(w.Agents))
	for i, a := range w.Agents {
		agents[i] = []string{strconv.Itoa(a.X), strconv.Itoa(a.Y)}
	}
	return writeRows(path.Join(dir, AgentsFile), agents)
}

func writeRows(file string, rows [][]string) error {
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("creating %s: %w", file, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	return nil
}

// LoadWorld rebuilds a world from the files written by SaveWorld, reading the
// first nTargets target rows and the first nAgents agent rows.
func LoadWorld(dir string, width, height, nAgents, nTargets int, opts ...Option) (*World, error) {
	w, err := NewWorld(width, height, opts...)
	if err != nil {
		return nil, err
	}

	targets, err := readRows(path.Join(dir, TargetsFile), nTargets)
	if err != nil {
		return nil, err
	}
	for i, row := range targets {
		p, err := parseCell(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrWorldConfig, TargetsFile, i+1, err)
		}
		value := 1.0
		if len(row) > 2 {
			value, err = strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s row %d: bad value: %v", ErrWorldConfig, TargetsFile, i+1, err)
			}
		}
		if err := w.AddTarget(p, value); err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrWorldConfig, TargetsFile, i+1, err)
		}
	}

	agents, err := readRows(path.Join(dir, AgentsFile), nAgents)
	if err != nil {
		return nil, err
	}
	for i, row := range agents {
		p, err := parseCell(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrWorldConfig, AgentsFile, i+1, err)
		}
		if err := w.AddAgent(p); err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrWorldConfig, AgentsFile, i+1, err)
		}
	}
	return w, nil
}

func readRows(file string, n int) ([][]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorldConfig, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrWorldConfig, file, err)
	}
	if len(rows) < n {
		return nil, fmt.Errorf("%w: %s has %d rows, need %d", ErrWorldConfig, file, len(rows), n)
	}
	return rows[:n], nil
}

func parseCell(row []string) (Position, error) {
	if len(row) < 2 || len(row) > 3 {
		return Position{}, fmt.Errorf("expected x,y got %d fields", len(row))
	}
	x, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		return Position{}, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(row[1]))
	if err != nil {
		return Position{}, err
	}
	return Position{X: x, Y: y}, nil
}
