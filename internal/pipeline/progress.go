// internal/pipeline/progress.go
package pipeline

// Progress receives stage and read counts while a run proceeds. Calls come
// from the goroutine driving the run.
type Progress interface {
	Stage(seed int, st Stage)
	Advance(reads int)
	Done()
}

type nopProgress struct{}

func (nopProgress) Stage(int, Stage) {}
func (nopProgress) Advance(int)      {}
func (nopProgress) Done()            {}
