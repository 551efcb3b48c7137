package jobs_test

import (
	"errors"
	"testing"

	"github.com/ridasaidd/byteforge-sub002/internal/jobs"
)

func TestSchedulerAddJobValidation(t *testing.T) {
	sched, err := jobs.NewScheduler(nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	t.Cleanup(func() { _ = sched.Stop() })

	cases := []struct {
		name string
		job  string
		cron string
		task func()
		want error
	}{
		{name: "missing name", job: " ", cron: "* * * * *", task: func() {}, want: jobs.ErrEmptyJobName},
		{name: "missing cron", job: "rebuild", cron: "", task: func() {}, want: jobs.ErrEmptyCronExpr},
		{name: "missing task", job: "rebuild", cron: "* * * * *", want: jobs.ErrNilTask},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := sched.AddJob(tc.job, tc.cron, tc.task); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := sched.AddJob("broken", "not a cron", func() {}); err == nil {
		t.Fatalf("expected invalid cron expression to fail")
	}
}

func TestSchedulerRegistersRebuild(t *testing.T) {
	svc, _ := setup(t)
	worker := newMemoryWorker(t, svc)

	sched, err := jobs.NewScheduler(nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	job, err := sched.ScheduleRebuild("*/5 * * * *", worker)
	if err != nil {
		t.Fatalf("schedule rebuild: %v", err)
	}
	if job.Name() != "stylesheet-rebuild" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if len(sched.Jobs()) != 1 {
		t.Fatalf("expected one registered job")
	}

	sched.Start()
	if err := sched.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := sched.Stop(); err != nil {
		t.Fatalf("second stop should be a no-op, got %v", err)
	}
}

func TestScheduleRebuildRequiresWorker(t *testing.T) {
	sched, err := jobs.NewScheduler(nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	t.Cleanup(func() { _ = sched.Stop() })
	if _, err := sched.ScheduleRebuild("* * * * *", nil); !errors.Is(err, jobs.ErrWorkerMisconfigured) {
		t.Fatalf("expected ErrWorkerMisconfigured, got %v", err)
	}
}
