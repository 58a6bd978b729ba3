package concurrency

// Item is a unit of task executed by concurrent workers
type Item[D any, O any] struct {
	Data   D
	Output O
	Err    error
}

func dispatchWorker[D any, O any](f func(*Item[D, O]) (O, error), dch chan *Item[D, O], ich chan *Item[D, O]) {
	for i := range dch {
		i.Output, i.Err = f(i)
		go func(i *Item[D, O]) { ich <- i }(i)
	}
}
