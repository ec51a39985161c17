package store

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"zombiezen.com/go/sqlite"

	"coursetheme/course"
)

//go:embed sample.yaml
var sampleData []byte

// SampleData returns demo catalog suitable for Seed.
func SampleData() []byte {
	return sampleData
}

type seedCourse struct {
	Name     string `yaml:"name"`
	Summary  string `yaml:"summary"`
	Authors  string `yaml:"authors"`
	Contacts []struct {
		ID   int64  `yaml:"id"`
		Name string `yaml:"name"`
		Role string `yaml:"role"`
	} `yaml:"contacts"`
	Ratings []int `yaml:"ratings"`
	// files to attach as course overview files
	Images []string `yaml:"images"`
}

type seedCategory struct {
	Name       string         `yaml:"name"`
	Hidden     bool           `yaml:"hidden"`
	Courses    []seedCourse   `yaml:"courses"`
	Categories []seedCategory `yaml:"categories"`
}

type seedData struct {
	Categories []seedCategory    `yaml:"categories"`
	Settings   map[string]string `yaml:"settings"`
}

// Seed loads catalog described in YAML. Relative image paths are resolved
// against dir. Settings go to component plugin configuration.
func (s *Store) Seed(ctx context.Context, r io.Reader, component, dir string) error {
	var data seedData
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&data); err != nil {
		return fmt.Errorf("unable to decode catalog: %w", err)
	}

	var images []File
	err := s.withTx(ctx, func(conn *sqlite.Conn) error {
		for _, cat := range data.Categories {
			files, err := seedCategoryTree(conn, 0, cat)
			if err != nil {
				return err
			}
			images = append(images, files...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to seed catalog: %w", err)
	}

	for i := range images {
		name := images[i].FileName
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, name)
		}
		content, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("unable to read course image: %w", err)
		}
		images[i].Content = content
		images[i].FileName = filepath.Base(name)
		if _, err := s.AddFile(ctx, &images[i]); err != nil {
			return err
		}
	}

	for name, value := range data.Settings {
		if err := s.SetConfig(ctx, component, name, value); err != nil {
			return err
		}
	}
	s.log.Info("Catalog loaded", zap.Int("categories", len(data.Categories)), zap.Int("images", len(images)))
	return nil
}

func seedCategoryTree(conn *sqlite.Conn, parent int64, cat seedCategory) ([]File, error) {
	id, err := addCategory(conn, parent, cat.Name, !cat.Hidden)
	if err != nil {
		return nil, fmt.Errorf("category '%s': %w", cat.Name, err)
	}

	var images []File
	for _, c := range cat.Courses {
		courseID, contextID, err := addCourse(conn, id, c.Name, c.Summary)
		if err != nil {
			return nil, fmt.Errorf("course '%s': %w", c.Name, err)
		}
		if len(c.Authors) > 0 {
			if err := setCustomField(conn, courseID, AuthorsField, c.Authors); err != nil {
				return nil, err
			}
		}
		for _, p := range c.Contacts {
			if err := addContact(conn, courseID, course.Contact{UserID: p.ID, FullName: p.Name, Role: p.Role}); err != nil {
				return nil, err
			}
		}
		for userID, r := range c.Ratings {
			if err := rate(conn, courseID, int64(userID+1), r); err != nil {
				return nil, fmt.Errorf("course '%s': %w", c.Name, err)
			}
		}
		for _, img := range c.Images {
			images = append(images, File{
				ContextID: contextID,
				Component: "course",
				FileArea:  "overviewfiles",
				FilePath:  "/",
				FileName:  img,
			})
		}
	}
	for _, sub := range cat.Categories {
		files, err := seedCategoryTree(conn, id, sub)
		if err != nil {
			return nil, err
		}
		images = append(images, files...)
	}
	return images, nil
}
