package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/paged-go/paged"
	"github.com/paged-go/paged/recordfile"
	"github.com/paged-go/paged/source"
)

var (
	file    = flag.String("file", recordfile.InMemoryFileName, "record file path")
	records = flag.Int("records", 100, "number of records to seed")
	perPage = flag.Int("per-page", 10, "records per page")
	preload = flag.Int("preload", 1, "pages to load ahead of each access")
	verbose = flag.Bool("v", false, "log page loads")
)

func main() {
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(log); err != nil {
		log.Fatal(err)
	}
}

func run(log *logrus.Logger) error {
	rf, err := recordfile.Open(*file, &recordfile.Options{
		Magic:      0x50474152,
		FileMode:   0664,
		RecordSize: 16,
		PerPage:    *perPage,
		Origin:     1,
	})
	if err != nil {
		return err
	}
	defer rf.Close()

	if rf.Count() == 0 {
		if err := seed(rf, *records); err != nil {
			return err
		}
	}

	arr, err := rf.Array(nil)
	if err != nil {
		return err
	}

	ctrl := source.NewController[[]byte](arr, rf, &source.Options{
		Preload: *preload,
		Log:     log,
	})

	// touch a few positions scattered across the sequence; each access
	// pulls in the covering page (plus read-ahead) on demand
	for _, i := range []int{0, arr.TotalCount() / 2, arr.TotalCount() - 1} {
		v, err := arr.At(i)
		if err != nil {
			return err
		}
		fmt.Printf("index %d: %q\n", i, bytes.TrimRight(v, "\x00"))
	}

	printStats(arr, ctrl)
	return nil
}

func seed(rf *recordfile.File, n int) error {
	for i := 0; i < n; i++ {
		rec := make([]byte, rf.RecordSize())
		copy(rec, fmt.Sprintf("record-%04d", i))
		if err := rf.Append(rec); err != nil {
			return err
		}
	}
	return nil
}

func printStats(arr *paged.Array[[]byte], ctrl *source.Controller[[]byte]) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(struct {
		Total    int          `json:"total"`
		Pages    int          `json:"pages"`
		Loaded   int          `json:"loaded"`
		Activity source.Stats `json:"activity"`
	}{
		Total:    arr.TotalCount(),
		Pages:    arr.Pages(),
		Loaded:   len(arr.PageMap()),
		Activity: ctrl.Stats(),
	})
}
