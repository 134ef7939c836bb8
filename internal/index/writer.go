package index

import "log"

// RunWriter is the consumer half of the writer pipeline: it drains mailbox
// sequentially, indexing every ClassEvent into store, until it receives a
// StopEvent, which it acknowledges by closing Done.
//
// RunWriter is meant to run on its own goroutine, started before the
// corresponding Walk call so the walker never blocks waiting for a reader.
func RunWriter(store *Store, mailbox <-chan interface{}) {
	for msg := range mailbox {
		switch m := msg.(type) {
		case ClassEvent:
			if err := store.Insert(m.Result); err != nil {
				log.Printf("index: insert %s: %v", m.Result.Name, err)
			}
		case StopEvent:
			if err := store.Commit(); err != nil {
				log.Printf("index: commit: %v", err)
			}
			close(m.Done)
			return
		default:
			log.Printf("index: writer: unexpected message %T", msg)
		}
	}
}
