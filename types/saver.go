package types

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/zerbeln/GridWorld/util"
)

// Layout of a results directory
const (
	ArtifactDir = "Output_Data"
	PlotDir     = "plots"
)

// Saver persists the learning curves of one experiment
type Saver interface {
	Save(*Curves) error
}

// CSVSaver appends one comma separated row per stat run to <dir>/<name>.csv.
// Per-agent curves go to <name>_agent<k>.csv.
type CSVSaver struct {
	dir string
}

var _ Saver = &CSVSaver{}

func NewCSVSaver(dir string) *CSVSaver {
	return &CSVSaver{dir: dir}
}

func (s *CSVSaver) Save(c *Curves) error {
	if err := ensureDir(s.dir); err != nil {
		return err
	}
	if err := util.AppendToFile(path.Join(s.dir, c.Name+".csv"), csvRows(c.Rewards)...); err != nil {
		return err
	}
	for a, runs := range c.AgentRewards {
		file := path.Join(s.dir, fmt.Sprintf("%s_agent%d.csv", c.Name, a))
		if err := util.AppendToFile(file, csvRows(runs)...); err != nil {
			return err
		}
	}
	return nil
}

func csvRows(rows [][]float64) []string {
	out := make([]string, len(rows))
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		out[r] = strings.Join(cells, ",")
	}
	return out
}

// GobSaver writes the curves to <dir>/<name>.gob
type GobSaver struct {
	dir string
}

var _ Saver = &GobSaver{}

func NewGobSaver(dir string) *GobSaver {
	return &GobSaver{dir: dir}
}

func (s *GobSaver) Save(c *Curves) error {
	if err := ensureDir(s.dir); err != nil {
		return err
	}
	f, err := os.Create(path.Join(s.dir, c.Name+".gob"))
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(c)
}

// LoadCurves reads a file written by GobSaver
func LoadCurves(file string) (*Curves, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c := &Curves{}
	if err := gob.NewDecoder(f).Decode(c); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", file, err)
	}
	return c, nil
}

// RedisSaver pushes every stat run as a json row onto the list <prefix>:<name>
type RedisSaver struct {
	client *redis.Client
	prefix string
	ctx    context.Context
}

var _ Saver = &RedisSaver{}

func NewRedisSaver(ctx context.Context, addr, prefix string) *RedisSaver {
	return &RedisSaver{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
		ctx:    ctx,
	}
}

func (s *RedisSaver) Key(name string) string {
	return s.prefix + ":" + name
}

func (s *RedisSaver) Save(c *Curves) error {
	key := s.Key(c.Name)
	rows := make([]interface{}, len(c.Rewards))
	for r, rewards := range c.Rewards {
		bs, err := json.Marshal(rewards)
		if err != nil {
			return err
		}
		rows[r] = string(bs)
	}
	if err := s.client.Del(s.ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.client.RPush(s.ctx, key, rows...).Err(); err != nil {
		return fmt.Errorf("redis rpush %s: %w", key, err)
	}
	return nil
}

func (s *RedisSaver) Close() error {
	return s.client.Close()
}
