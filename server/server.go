// Package server serves the results of past training sessions over http
package server

import (
	"net/http"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/zerbeln/GridWorld/types"
)

// Summary is the json view of one experiment's curves
type Summary struct {
	Name   string    `json:"name"`
	Runs   int       `json:"runs"`
	Epochs int       `json:"epochs"`
	Mean   []float64 `json:"mean"`
	StdErr []float64 `json:"stderr"`
	Final  float64   `json:"final"`
}

// Server is a read only browser over a results directory
type Server struct {
	resultsDir string
	engine     *gin.Engine
}

func New(resultsDir string) *Server {
	s := &Server{resultsDir: resultsDir}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/experiments", s.handleList)
	r.GET("/experiments/:name", s.handleExperiment)
	r.Static("/plots", path.Join(resultsDir, types.PlotDir))
	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving on addr
func (s *Server) Run(addr string) error {
	logrus.WithFields(logrus.Fields{"addr": addr, "results": s.resultsDir}).Info("serving results")
	return s.engine.Run(addr)
}

func (s *Server) artifactDir() string {
	return path.Join(s.resultsDir, types.ArtifactDir)
}

func (s *Server) handleList(c *gin.Context) {
	entries, err := os.ReadDir(s.artifactDir())
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, gin.H{"experiments": []string{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".gob") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".gob"))
	}
	sort.Strings(names)
	c.JSON(http.StatusOK, gin.H{"experiments": names})
}

func (s *Server) handleExperiment(c *gin.Context) {
	name := c.Param("name")
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid experiment name"})
		return
	}
	curves, err := types.LoadCurves(path.Join(s.artifactDir(), name+".gob"))
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no such experiment"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, Summary{
		Name:   curves.Name,
		Runs:   curves.Runs(),
		Epochs: curves.Epochs(),
		Mean:   curves.Mean(),
		StdErr: curves.StdErr(),
		Final:  curves.Final(),
	})
}
