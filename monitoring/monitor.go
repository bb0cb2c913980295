// Package monitoring serves the live state of a measurement run over HTTP:
// sweep progress, process resource usage, the registered experiment
// contexts, and on-demand CPU profiles. Long sweeps are otherwise silent
// apart from progress dots, so this is the way to check on a remote run.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/cachelab/memprobe/probe"
	"github.com/cachelab/memprobe/target"
)

// A Monitor turns a measurement run into a small web server. It implements
// probe.ProgressReporter, so a Probe built WithProgress(monitor) reports
// its sweeps here.
type Monitor struct {
	portNumber int
	autoOpen   bool

	experimentsLock sync.Mutex
	experiments     map[string]any

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		experiments: make(map[string]any),
	}
}

// WithPortNumber sets the port the monitor listens on.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithAutoOpen makes StartServer open the monitor in the local browser.
func (m *Monitor) WithAutoOpen(open bool) *Monitor {
	m.autoOpen = open
	return m
}

// RegisterExperiment registers an experiment context to be inspectable
// under /api/experiment/{name}.
func (m *Monitor) RegisterExperiment(name string, x any) {
	m.experimentsLock.Lock()
	defer m.experimentsLock.Unlock()

	if _, exists := m.experiments[name]; exists {
		panic("experiment " + name + " already registered")
	}

	m.experiments[name] = x
}

// StartTask implements probe.ProgressReporter.
func (m *Monitor) StartTask(name string, total uint64) probe.ProgressTask {
	bar := &ProgressBar{
		monitor:   m,
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

func (m *Monitor) completeProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts serving. It returns after the listener is up; serving
// continues in the background for the rest of the run.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/machine", m.machine)
	r.HandleFunc("/api/experiments", m.listExperiments)
	r.HandleFunc("/api/experiment/{name}", m.experimentDetails)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber >= 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring measurement run at %s\n", url)

	go func() {
		err := http.Serve(listener, nil)
		dieOnErr(err)
	}()

	if m.autoOpen {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %v\n", err)
		}
	}
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(m.progressBars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) machine(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"machine\":%q}", target.CPUModelName())
}

func (m *Monitor) listExperiments(w http.ResponseWriter, _ *http.Request) {
	m.experimentsLock.Lock()
	defer m.experimentsLock.Unlock()

	names := make([]string, 0, len(m.experiments))
	for name := range m.experiments {
		names = append(names, name)
	}

	bytes, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) experimentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	m.experimentsLock.Lock()
	x, exists := m.experiments[name]
	m.experimentsLock.Unlock()

	if !exists {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Experiment not found"))
		dieOnErr(err)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(x)
	serializer.SetMaxDepth(1)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
