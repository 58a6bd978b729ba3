package concurrency

import multierror "github.com/hashicorp/go-multierror"

// Dispatcher models two-way communication between 1 dispatcher and n=concurrency workers.
//
// It reads from input channel, calls dispatch, sends resulting items into dispatch channel,
// and waits for processed items from workers via input channel to continue the process.
//
// Each worker reads from dispatch channel, calls work on received items, and sends them back to the dispatcher.
// Dispatcher terminates when input channel is completely drained and no new items are generated from dispatch.
//
// Errors from work and dispatch are stored on the item. Errors of every item seen,
// including the generated ones, are returned aggregated.
func Dispatcher[D any, O any](dispatch func(*Item[D, O]) ([]*Item[D, O], error), work func(*Item[D, O]) (O, error), items []*Item[D, O], concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}

	ich := make(chan *Item[D, O])
	dch := make(chan *Item[D, O])

	for i := 0; i < concurrency; i++ {
		go dispatchWorker(work, dch, ich)
	}
	go func() {
		for _, i := range items {
			ich <- i
		}
	}()

	var all []*Item[D, O]
	seen := make(map[*Item[D, O]]bool)
	track := func(i *Item[D, O]) {
		if !seen[i] {
			seen[i] = true
			all = append(all, i)
		}
	}
	for _, i := range items {
		track(i)
	}

	for pending := len(items); pending > 0; pending-- {
		i := <-ich
		if i.Err != nil {
			continue
		}
		out, err := dispatch(i)
		if err != nil {
			i.Err = err
			continue
		}
		pending += len(out)
		for _, o := range out {
			track(o)
			go func(o *Item[D, O]) { dch <- o }(o)
		}
	}
	close(dch)

	var errs *multierror.Error
	for _, i := range all {
		if i.Err != nil {
			errs = multierror.Append(errs, i.Err)
		}
	}

	return errs.ErrorOrNil()
}
