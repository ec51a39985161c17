package state

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"coursetheme/common"
	"coursetheme/config"
	"coursetheme/course"
	"coursetheme/render"
)

func TestContextWithEnv(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("EnvFromContext() returned nil")
	}
	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
}

func TestEnvFromContext_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when env not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := &LocalEnv{start: time.Now()}
	time.Sleep(10 * time.Millisecond)
	if uptime := env.Uptime(); uptime < 10*time.Millisecond || uptime > time.Second {
		t.Errorf("Uptime() = %v", uptime)
	}
}

func TestLocalEnv_RedirectAndRestore(t *testing.T) {
	t.Run("with logger", func(t *testing.T) {
		env := &LocalEnv{
			Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
		}
		for i := range 3 {
			env.RedirectStdLog()
			if env.restoreStdLog == nil {
				t.Errorf("Iteration %d: restoreStdLog not set", i)
			}
			env.RestoreStdLog()
		}
	})

	t.Run("without logger", func(t *testing.T) {
		env := &LocalEnv{}
		env.RedirectStdLog()
		if env.restoreStdLog != nil {
			t.Error("Expected restoreStdLog to remain nil")
		}
		env.RestoreStdLog()
	})
}

func testEnv(t *testing.T) *LocalEnv {
	t.Helper()
	dir := t.TempDir()
	return &LocalEnv{
		Cfg: &config.Config{
			Version: 1,
			Theme: config.ThemeConfig{
				Name:          "ikbfu2021",
				Component:     "theme_ikbfu2021",
				Lang:          "en",
				WWWRoot:       "http://localhost:8080",
				DataRoot:      filepath.Join(dir, "data"),
				SystemContext: 1,
				SiteID:        1,
				PresetArea:    "preset",
			},
			Listing: config.ListingConfig{
				CoursesPerPage:            20,
				CoursesWithSummariesLimit: 10,
				NameLimit:                 70,
				ShowMode:                  common.ShowModeAuto,
			},
			Database: config.DatabaseConfig{Path: filepath.Join(dir, "moodle.sqlite"), PoolSize: 2},
		},
		Log:   zaptest.NewLogger(t),
		start: time.Now(),
	}
}

func TestLocalEnv_Store(t *testing.T) {
	ctx := context.Background()
	env := testEnv(t)

	if _, err := env.NewRenderer(render.NewPage(), ""); err == nil {
		t.Error("NewRenderer() succeeded without database")
	}

	if err := env.OpenStore(ctx); err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	db := env.Store
	if err := env.OpenStore(ctx); err != nil || env.Store != db {
		t.Errorf("second OpenStore() reopened database: %v", err)
	}
	if env.Theme == nil {
		t.Error("Theme not set")
	}

	catID, err := env.Store.AddCategory(ctx, 0, "Physics", true)
	if err != nil {
		t.Fatal(err)
	}
	courseID, err := env.Store.AddCourse(ctx, catID, "Mechanics", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Store.Rate(ctx, courseID, 1, 4); err != nil {
		t.Fatal(err)
	}

	r, err := env.NewRenderer(render.NewPage(), "ru")
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	out, err := r.CourseCard(ctx, course.DisplayOptions{ShowMode: common.ShowModeExpanded}, &course.Summary{ID: courseID, FullName: "Mechanics"}, "")
	if err != nil {
		t.Fatalf("CourseCard() error = %v", err)
	}
	for _, want := range []string{"★ 4.00", "Авторы не указаны", "http://localhost:8080/course/view.php?id="} {
		if !strings.Contains(out, want) {
			t.Errorf("card does not contain %q: %s", want, out)
		}
	}

	if err := env.CloseStore(); err != nil {
		t.Errorf("CloseStore() error = %v", err)
	}
	if env.Store != nil || env.Theme != nil {
		t.Error("store is still set after close")
	}
	if err := env.CloseStore(); err != nil {
		t.Errorf("second CloseStore() error = %v", err)
	}
}

func TestLocalEnv_OpenStoreWithoutConfig(t *testing.T) {
	env := &LocalEnv{}
	if err := env.OpenStore(context.Background()); err == nil {
		t.Error("OpenStore() succeeded without configuration")
	}
}
