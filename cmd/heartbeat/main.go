// Command heartbeat is the peer side of the watchdog: it sends alternating
// heartbeat edges at a fixed interval. Misbehaviour flags inject faults so
// the watchdog side can be demonstrated end to end.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/heartbeat-watchdog/internal/gpio"
	"github.com/sweeney/heartbeat-watchdog/internal/udp"
	"github.com/sweeney/heartbeat-watchdog/internal/watchdog"
)

func main() {
	target := flag.String("target", "127.0.0.1:9999", "watchdog UDP address")
	ioKind := flag.String("io", "udp", `transport: "udp" or "gpio"`)
	chip := flag.String("gpio-chip", gpio.DefaultChip, "GPIO chip device name")
	line := flag.Int("gpio-line", 0, "GPIO output line offset")
	interval := flag.Duration("interval", 100*time.Millisecond, "beat interval")
	count := flag.Int("count", 0, "number of beats to send (0 = until interrupted)")
	skipEvery := flag.Int("skip-every", 0, "pause one extra interval every Nth beat (0 = never)")
	doubleEvery := flag.Int("double-every", 0, "send every Nth beat twice back to back (0 = never)")

	flag.Parse()

	if err := run(*target, *ioKind, *chip, *line, *interval, *count, *skipEvery, *doubleEvery); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(target, ioKind, chip string, line int, interval time.Duration, count, skipEvery, doubleEvery int) error {
	var heart watchdog.Heart
	switch ioKind {
	case "udp":
		h, err := udp.NewHeart(target)
		if err != nil {
			return fmt.Errorf("init udp: %w", err)
		}
		defer h.Close()
		heart = h
	case "gpio":
		h, err := gpio.NewHeart(chip, line)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer h.Close()
		heart = h
	default:
		return fmt.Errorf("unknown io kind %q", ioKind)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("beating: io=%s interval=%v skip-every=%d double-every=%d",
		ioKind, interval, skipEvery, doubleEvery)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; count == 0 || n <= count; n++ {
		select {
		case s := <-sigCh:
			log.Printf("received %v, stopping", s)
			return nil
		case <-ticker.C:
		}

		skip, double := misbehave(n, skipEvery, doubleEvery)
		if skip {
			log.Printf("beat %d: skipping (extra %v pause)", n, interval)
			time.Sleep(interval)
			continue
		}
		if err := heart.Beat(); err != nil {
			return fmt.Errorf("beat %d: %w", n, err)
		}
		if double {
			log.Printf("beat %d: doubling", n)
			if err := heart.Beat(); err != nil {
				return fmt.Errorf("beat %d (double): %w", n, err)
			}
		}
	}
	return nil
}

// misbehave decides which fault, if any, to inject on the nth beat.
func misbehave(n, skipEvery, doubleEvery int) (skip, double bool) {
	skip = skipEvery > 0 && n%skipEvery == 0
	double = !skip && doubleEvery > 0 && n%doubleEvery == 0
	return skip, double
}
