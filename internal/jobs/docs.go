// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are built on github.com/robfig/cron/v3 with seconds precision. Overlapping
// runs of the same job are skipped.
//
// # Available Jobs
//
// 1. TimeoutSweeperJob - recovers offers not accepted within the grace period (default "@every 30s")
// 2. QueuedRedispatchJob - retries dispatch for queued assignments (default "@every 15s")
//
// # Usage
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewTimeoutSweeperJob(sweepHandler, locker, cfg.SweepSchedule, time.Minute, logger),
//		jobs.NewQueuedRedispatchJob(redispatchHandler, locker, cfg.RedispatchSchedule, time.Minute, logger),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Replicas
//
// Every tick first takes a lease through ports.Locker (Redis when configured), so
// only one replica runs a given job at a time. A tick that loses the lease does nothing.
package jobs
