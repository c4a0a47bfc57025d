package perf

import (
	"context"
	"sort"
	"time"

	"git.nurpath.academy/nurpath/portal/src/jobs"
)

type RequestPerf struct {
	Route  string
	Path   string // the path actually matched
	Method string
	Start  time.Time
	End    time.Time
	Blocks []PerfBlock
}

func MakeNewRequestPerf(route string, method string, path string) *RequestPerf {
	return &RequestPerf{
		Start:  time.Now(),
		Route:  route,
		Path:   path,
		Method: method,
	}
}

func (rp *RequestPerf) EndRequest() {
	if rp == nil {
		return
	}
	for rp.EndBlock() {
	}
	rp.End = time.Now()
}

func (rp *RequestPerf) StartBlock(category, description string) {
	if rp == nil {
		return
	}
	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       time.Now(),
		Category:    category,
		Description: description,
	})
}

func (rp *RequestPerf) EndBlock() bool {
	if rp == nil {
		return false
	}
	for i := len(rp.Blocks) - 1; i >= 0; i -= 1 {
		if rp.Blocks[i].End.IsZero() {
			rp.Blocks[i].End = time.Now()
			return true
		}
	}
	return false
}

func (rp *RequestPerf) Duration() time.Duration {
	return rp.End.Sub(rp.Start)
}

func (rp *RequestPerf) MsFromStart(block *PerfBlock) float64 {
	return float64(block.Start.Sub(rp.Start).Nanoseconds()) / 1000 / 1000
}

type PerfBlock struct {
	Start       time.Time
	End         time.Time
	Category    string
	Description string
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func (pb *PerfBlock) DurationMs() float64 {
	return float64(pb.Duration().Nanoseconds()) / 1000 / 1000
}

// Only the most recent requests are kept.
const MaxStoredRequests = 1000

type PerfStorage struct {
	AllRequests []RequestPerf
}

type RouteSummary struct {
	Route   string        `json:"route"`
	Count   int           `json:"count"`
	Mean    time.Duration `json:"mean"`
	Slowest time.Duration `json:"slowest"`
}

// Groups stored requests by route, slowest mean first.
func (s *PerfStorage) Summarize() []RouteSummary {
	byRoute := map[string]*RouteSummary{}
	total := map[string]time.Duration{}
	for _, req := range s.AllRequests {
		key := req.Method + " " + req.Route
		sum, ok := byRoute[key]
		if !ok {
			sum = &RouteSummary{Route: key}
			byRoute[key] = sum
		}
		d := req.Duration()
		sum.Count++
		total[key] += d
		if d > sum.Slowest {
			sum.Slowest = d
		}
	}

	result := make([]RouteSummary, 0, len(byRoute))
	for key, sum := range byRoute {
		sum.Mean = total[key] / time.Duration(sum.Count)
		result = append(result, *sum)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Mean == result[j].Mean {
			return result[i].Route < result[j].Route
		}
		return result[i].Mean > result[j].Mean
	})
	return result
}

type PerfCollector struct {
	In          chan<- RequestPerf
	RequestCopy chan<- (chan<- PerfStorage)
}

func RunPerfCollector() (*PerfCollector, *jobs.Job) {
	job := jobs.New("perf collector")
	in := make(chan RequestPerf)
	requestCopy := make(chan (chan<- PerfStorage))

	var storage PerfStorage

	go func() {
		defer job.Finish()

		for {
			select {
			case perf := <-in:
				storage.AllRequests = append(storage.AllRequests, perf)
				if over := len(storage.AllRequests) - MaxStoredRequests; over > 0 {
					storage.AllRequests = append([]RequestPerf(nil), storage.AllRequests[over:]...)
				}
			case resultChan := <-requestCopy:
				resultChan <- PerfStorage{AllRequests: append([]RequestPerf(nil), storage.AllRequests...)}
			case <-job.Canceled():
				return
			}
		}
	}()

	return &PerfCollector{
		In:          in,
		RequestCopy: requestCopy,
	}, job
}

// Never blocks past ctx; a stopped collector just drops the run.
func (perfCollector *PerfCollector) SubmitRun(ctx context.Context, run *RequestPerf) {
	select {
	case perfCollector.In <- *run:
	case <-ctx.Done():
	case <-time.After(time.Second):
	}
}

func (perfCollector *PerfCollector) GetPerfCopy() *PerfStorage {
	resultChan := make(chan PerfStorage)
	perfCollector.RequestCopy <- resultChan
	perfStorageCopy := <-resultChan
	return &perfStorageCopy
}

type perfContextKey struct{}

func AttachPerf(ctx context.Context, rp *RequestPerf) context.Context {
	return context.WithValue(ctx, perfContextKey{}, rp)
}

// Returns the request's perf record, or nil outside of a request. All
// RequestPerf methods accept a nil receiver.
func ExtractPerf(ctx context.Context) *RequestPerf {
	rp, _ := ctx.Value(perfContextKey{}).(*RequestPerf)
	return rp
}
