package main

import (
	"bufio"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const samplingInterval = 10 * time.Millisecond

var rssBytesFunc = rssBytes

// measurePeakResidentMemory runs fn while sampling resident memory and
// returns fn's results plus the highest RSS observed, in bytes.
func measurePeakResidentMemory[T any](fn func() (T, float64)) (T, float64, float64) {
	baseline := rssBytesFunc()
	peak := baseline

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(samplingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if current := rssBytesFunc(); current > peak {
					peak = current
				}
			case <-stop:
				return
			}
		}
	}()

	result, duration := fn()
	close(stop)
	wg.Wait()

	if current := rssBytesFunc(); current > peak {
		peak = current
	}
	return result, duration, peak
}

func rssBytes() float64 {
	if runtime.GOOS == "linux" {
		return firstRSS(rssFromProcStatm, rssFromProcStatus, rssFromPS)
	}
	return firstRSS(rssFromPS)
}

// firstRSS returns the first positive reading, or 0.
func firstRSS(readers ...func() (float64, error)) float64 {
	for _, read := range readers {
		v, err := read()
		if err != nil {
			log.WithError(err).Debug("rss sample unavailable")
			continue
		}
		if v > 0 {
			return v
		}
	}
	return 0
}

// rssFromProcStatm reads the resident page count from /proc/self/statm.
func rssFromProcStatm() (float64, error) {
	data, err := os.ReadFile("/proc/self/statm")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 2 {
		return 0, errors.Errorf("short statm line %q", data)
	}
	pages, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse statm")
	}
	return float64(pages * uint64(os.Getpagesize())), nil
}

func rssFromProcStatus() (float64, error) {
	file, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if kb, ok := strings.CutPrefix(scanner.Text(), "VmRSS:"); ok {
			return parseKilobytes(strings.TrimSuffix(strings.TrimSpace(kb), " kB"))
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, errors.New("VmRSS not found")
}

func rssFromPS() (float64, error) {
	output, err := exec.Command("ps", "-o", "rss=", "-p", strconv.Itoa(os.Getpid())).Output()
	if err != nil {
		return 0, errors.Wrap(err, "run ps")
	}
	return parseKilobytes(strings.TrimSpace(string(output)))
}

func parseKilobytes(value string) (float64, error) {
	kb, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse rss %q", value)
	}
	return float64(kb * 1024), nil
}
