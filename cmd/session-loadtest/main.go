// Command session-loadtest drives concurrent logins and refresh rotations
// against an Engine backed by Redis (or miniredis) and reports latency
// percentiles. The race phase presents one refresh token from several
// workers at once and checks that exactly one rotation wins.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/users"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const loadPassword = "load-test-password"

type subjectState struct {
	id      string
	email   string
	mu      sync.Mutex
	refresh string
}

func main() {
	var (
		subjects    = flag.Int("subjects", 1000, "number of principals to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "refresh operations in the rotate phase")
		racers      = flag.Int("racers", 8, "workers sharing one token in the race phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *subjects <= 0 || *concurrency <= 0 || *ops <= 0 || *racers <= 1 {
		fmt.Fprintln(os.Stderr, "subjects, concurrency and ops must be > 0, racers > 1")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := goSession.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("loadtest-access-secret-0123456789")
	cfg.JWT.RefreshSecret = []byte("loadtest-refresh-secret-0123456789")
	cfg.Store.RedisPrefix = "loadtest_refresh"
	// Cheap argon2 parameters keep the login phase about the store, not hashing.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	states, repo, err := seed(cfg, *subjects)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	engine, err := goSession.New().WithConfig(cfg).WithUserRepository(repo).WithRedis(client).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	loginStats := runLoginPhase(ctx, engine, states, *concurrency)
	rotateStats := runRotatePhase(ctx, engine, states, *ops, *concurrency)
	winners, losers := runRacePhase(ctx, engine, states, *racers)

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("refresh", rotateStats)
	fmt.Printf("race: subjects=%d winners=%d rejected=%d\n", len(states), winners, losers)
	if winners != int64(len(states)) {
		fmt.Fprintln(os.Stderr, "race: expected exactly one winner per subject")
		os.Exit(1)
	}
}

func seed(cfg goSession.Config, n int) ([]*subjectState, *users.MemoryRepository, error) {
	v, err := password.NewVerifier(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	}, cfg.Password.BcryptCost)
	if err != nil {
		return nil, nil, err
	}
	hash, err := v.Hash(loadPassword)
	if err != nil {
		return nil, nil, err
	}

	repo := users.NewMemoryRepository()
	states := make([]*subjectState, n)
	for i := range states {
		st := &subjectState{id: fmt.Sprintf("%d", i+1), email: fmt.Sprintf("load-%d@example.com", i+1)}
		repo.Put(users.Principal{ID: st.id, Email: st.email, PasswordHash: hash, Role: users.RoleCustomer})
		states[i] = st
	}
	return states, repo, nil
}

func runLoginPhase(ctx context.Context, engine *goSession.Engine, states []*subjectState, concurrency int) phaseStats {
	return runWorkers(len(states), concurrency, func(i int) error {
		st := states[i]
		res, err := engine.Login(ctx, goSession.Credentials{Email: st.email, Password: loadPassword}, nil)
		if err != nil {
			return err
		}
		st.mu.Lock()
		st.refresh = res.Tokens.RefreshToken
		st.mu.Unlock()
		return nil
	})
}

func runRotatePhase(ctx context.Context, engine *goSession.Engine, states []*subjectState, ops, concurrency int) phaseStats {
	return runWorkers(ops, concurrency, func(i int) error {
		st := states[i%len(states)]
		st.mu.Lock()
		defer st.mu.Unlock()
		pair, err := engine.Refresh(ctx, st.refresh, st.id, nil)
		if err != nil {
			return err
		}
		st.refresh = pair.RefreshToken
		return nil
	})
}

// runRacePhase presents each subject's current token from racers goroutines.
func runRacePhase(ctx context.Context, engine *goSession.Engine, states []*subjectState, racers int) (winners, losers int64) {
	for _, st := range states {
		var wg sync.WaitGroup
		start := make(chan struct{})
		for r := 0; r < racers; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := engine.Refresh(ctx, st.refresh, st.id, nil)
				switch {
				case err == nil:
					atomic.AddInt64(&winners, 1)
				case errors.Is(err, goSession.ErrInvalidRefreshToken):
					atomic.AddInt64(&losers, 1)
				}
			}()
		}
		close(start)
		wg.Wait()
	}
	return winners, losers
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func runWorkers(ops, concurrency int, op func(i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
