// Package scheduler fires a callback once per day per guild at the
// guild's configured local wall-clock time.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

var ErrInvalidTimezone = errors.New("invalid timezone")

// PublishFunc is invoked on the dispatcher goroutine each time a
// guild's trigger fires. Callbacks run sequentially.
type PublishFunc func(guildID snowflake.ID)

type trigger struct {
	hour   int
	minute int
	loc    *time.Location
	next   time.Time
	stop   chan struct{}
}

type Scheduler struct {
	mu       sync.Mutex
	triggers map[snowflake.ID]*trigger
	fireCh   chan snowflake.ID
	shutdown chan struct{}
	publish  PublishFunc
	wg       sync.WaitGroup
	closed   bool
}

func New(publish PublishFunc) *Scheduler {
	s := &Scheduler{
		triggers: make(map[snowflake.ID]*trigger),
		fireCh:   make(chan snowflake.ID, 16),
		shutdown: make(chan struct{}),
		publish:  publish,
	}
	s.wg.Add(1)
	go s.dispatch()
	return s
}

// Schedule registers or replaces the guild's daily trigger. Timezone
// names are IANA identifiers; an unknown name leaves any existing
// trigger untouched.
func (s *Scheduler) Schedule(guildID snowflake.ID, hour, minute int, timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, timezone)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("time out of range: %02d:%02d", hour, minute)
	}

	t := &trigger{
		hour:   hour,
		minute: minute,
		loc:    loc,
		next:   nextOccurrence(time.Now(), hour, minute, loc),
		stop:   make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("scheduler stopped")
	}
	if old, ok := s.triggers[guildID]; ok {
		close(old.stop)
	}
	s.triggers[guildID] = t
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(guildID, t)

	slog.Info("Scheduled daily poll",
		slog.String("type", "scheduler"),
		slog.String("guild_id", guildID.String()),
		slog.Time("next", t.next))
	return nil
}

// Unschedule removes the guild's trigger. Safe to call for guilds
// that were never scheduled.
func (s *Scheduler) Unschedule(guildID snowflake.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.triggers[guildID]; ok {
		close(t.stop)
		delete(s.triggers, guildID)
	}
}

// NextFireTime reports when the guild's trigger will next fire.
func (s *Scheduler) NextFireTime(guildID snowflake.ID) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.triggers[guildID]
	if !ok {
		return time.Time{}, false
	}
	return t.next, true
}

func (s *Scheduler) ScheduledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.triggers)
}

// Stop cancels all triggers and waits for in-flight callbacks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, t := range s.triggers {
		close(t.stop)
		delete(s.triggers, id)
	}
	s.mu.Unlock()

	close(s.shutdown)
	s.wg.Wait()
}

func (s *Scheduler) run(guildID snowflake.ID, t *trigger) {
	defer s.wg.Done()
	timer := time.NewTimer(time.Until(t.next))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			select {
			case s.fireCh <- guildID:
			case <-t.stop:
				return
			case <-s.shutdown:
				return
			}

			s.mu.Lock()
			t.next = nextOccurrence(time.Now(), t.hour, t.minute, t.loc)
			next := t.next
			s.mu.Unlock()
			timer.Reset(time.Until(next))
		case <-t.stop:
			return
		case <-s.shutdown:
			return
		}
	}
}

// dispatch serializes publish callbacks so two guilds firing in the
// same instant never publish concurrently.
func (s *Scheduler) dispatch() {
	defer s.wg.Done()
	for {
		select {
		case guildID := <-s.fireCh:
			s.safePublish(guildID)
		case <-s.shutdown:
			return
		}
	}
}

func (s *Scheduler) safePublish(guildID snowflake.ID) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Publish callback panicked",
				slog.String("type", "scheduler"),
				slog.String("guild_id", guildID.String()),
				slog.Any("panic", r))
		}
	}()
	s.publish(guildID)
}

// nextOccurrence returns the first instant strictly after now whose
// wall clock in loc reads hour:minute. DST gaps resolve to whatever
// instant time.Date normalizes to on the target day.
func nextOccurrence(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}
