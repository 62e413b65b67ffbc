package queue

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/pkg/metrics"
)

type verifyResult struct {
	ok  bool
	err error
}

type verifyJob struct {
	secret string
	hash   string
	// Buffered so a worker can always hand back its result, even when the
	// caller has already given up waiting.
	result chan verifyResult
}

// VerifierPool runs bcrypt comparisons on a fixed set of worker goroutines so
// that hashing never runs on a request goroutine.
type VerifierPool struct {
	jobs    chan verifyJob
	done    chan struct{}
	workers int
	compare func(hash, secret []byte) error
	log     zerolog.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewVerifierPool creates a pool with numWorkers workers.
// If numWorkers <= 0, one worker per CPU is used.
func NewVerifierPool(numWorkers int, log zerolog.Logger) *VerifierPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &VerifierPool{
		// Unbuffered: a successful send means a worker owns the job.
		jobs:    make(chan verifyJob),
		done:    make(chan struct{}),
		workers: numWorkers,
		compare: bcrypt.CompareHashAndPassword,
		log:     log,
	}
}

// Start launches the workers. The pool stops when ctx is cancelled or Stop is
// called, whichever comes first.
func (p *VerifierPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
	go func() {
		select {
		case <-ctx.Done():
			p.Stop()
		case <-p.done:
		}
	}()
}

// Stop signals all workers to exit and waits for in-flight comparisons to
// finish. Safe to call more than once.
func (p *VerifierPool) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

// Verify reports whether secret matches storedHash. A malformed hash is a
// mismatch, not an error. Errors are reserved for the pool itself failing:
// domain.ErrVerifierFailed when the worker panicked, domain.ErrVerifierStopped
// after Stop, or ctx.Err() when the caller gave up.
func (p *VerifierPool) Verify(ctx context.Context, secret, storedHash string) (bool, error) {
	job := verifyJob{
		secret: secret,
		hash:   storedHash,
		result: make(chan verifyResult, 1),
	}

	select {
	case <-p.done:
		return false, domain.ErrVerifierStopped
	case <-ctx.Done():
		return false, ctx.Err()
	case p.jobs <- job:
	}

	select {
	case r := <-job.result:
		return r.ok, r.err
	case <-ctx.Done():
		// The worker finishes on its own and drops the result into the
		// buffered channel; its slot is not leaked.
		return false, ctx.Err()
	}
}

func (p *VerifierPool) runWorker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case job := <-p.jobs:
			job.result <- p.run(id, job)
		}
	}
}

func (p *VerifierPool) run(id int, job verifyJob) (res verifyResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Int("worker_id", id).
				Interface("panic", r).
				Msg("credential verification panicked")
			metrics.CredentialVerificationsTotal.WithLabelValues("failed").Inc()
			res = verifyResult{err: domain.ErrVerifierFailed}
		}
		metrics.CredentialVerificationDuration.Observe(time.Since(start).Seconds())
	}()

	err := p.compare([]byte(job.hash), []byte(job.secret))
	switch {
	case err == nil:
		metrics.CredentialVerificationsTotal.WithLabelValues("match").Inc()
		return verifyResult{ok: true}
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		// A candidate over bcrypt's 72 byte limit can never match and says
		// nothing about the stored hash.
		metrics.CredentialVerificationsTotal.WithLabelValues("mismatch").Inc()
		return verifyResult{ok: false}
	default:
		p.log.Warn().Err(err).Int("worker_id", id).Msg("stored credential hash could not be decoded")
		metrics.CredentialVerificationsTotal.WithLabelValues("malformed").Inc()
		return verifyResult{ok: false}
	}
}
