package theme

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"coursetheme/store"
)

// ImagesDir returns directory where setting images are published for web
// server.
func (t *Theme) ImagesDir() string {
	return filepath.Join(t.cfg.Theme.DataRoot, "pix_plugins", "theme", t.cfg.Theme.Name)
}

// CacheDir returns directory of compiled theme caches.
func (t *Theme) CacheDir() string {
	return filepath.Join(t.cfg.Theme.DataRoot, "localcache", "theme")
}

// SettingName extracts setting name from admin form element name like
// "s_theme_ikbfu2021_loginbackgroundimage".
func SettingName(element string) string {
	return element[strings.LastIndexByte(element, '_')+1:]
}

// settingFileHash locates file uploaded for image setting. fileName is
// setting value, path of the file in setting file area.
func (t *Theme) settingFileHash(setting, fileName string) string {
	sum := sha1.Sum(fmt.Appendf(nil, "/%d/%s/%s/0%s", t.cfg.Theme.SystemContext, t.cfg.Theme.Component, setting, fileName))
	return hex.EncodeToString(sum[:])
}

// UpdateSettingsImage publishes image uploaded for setting into data root so
// it could be served directly, replacing images previously published for the
// same setting. Theme caches are reset in any case.
func (t *Theme) UpdateSettingsImage(ctx context.Context, element string) error {
	setting := SettingName(element)
	err := t.publishSettingImage(ctx, setting)
	if err != nil {
		err = fmt.Errorf("unable to publish image for %s: %w", setting, err)
	}
	return multierr.Append(err, t.ResetCaches(ctx))
}

// UploadSettingsImage stores image for setting in host file storage, points
// setting to it and publishes it.
func (t *Theme) UploadSettingsImage(ctx context.Context, element, fileName string, data []byte) error {
	setting := SettingName(element)
	fileName = filepath.Base(filepath.Clean("/" + fileName))
	if fileName == "/" || fileName == "." {
		return errors.New("image file name is empty")
	}
	if !filetype.IsImage(data) {
		return fmt.Errorf("'%s' is not an image", fileName)
	}
	_, err := t.db.AddFile(ctx, &store.File{
		ContextID: t.cfg.Theme.SystemContext,
		Component: t.cfg.Theme.Component,
		FileArea:  setting,
		FilePath:  "/",
		FileName:  fileName,
		Content:   data,
	})
	if err != nil {
		return fmt.Errorf("unable to store image for %s: %w", setting, err)
	}
	if err := t.db.SetConfig(ctx, t.cfg.Theme.Component, setting, "/"+fileName); err != nil {
		return fmt.Errorf("unable to update setting %s: %w", setting, err)
	}
	return t.UpdateSettingsImage(ctx, element)
}

func (t *Theme) publishSettingImage(ctx context.Context, setting string) error {
	fileName, ok, err := t.db.Config(ctx, t.cfg.Theme.Component, setting)
	if err != nil {
		return err
	}
	if !ok || len(fileName) == 0 {
		t.log.Debug("Setting has no image", zap.String("setting", setting))
		return nil
	}

	f, err := t.db.FileByHash(ctx, t.settingFileHash(setting, fileName))
	if errors.Is(err, store.ErrNotFound) {
		t.log.Debug("Setting image not found", zap.String("setting", setting), zap.String("file", fileName))
		return nil
	}
	if err != nil {
		return err
	}

	ext := strings.TrimPrefix(filepath.Ext(fileName), ".")
	if len(ext) == 0 {
		if kind, err := filetype.Match(f.Content); err == nil && kind != filetype.Unknown {
			ext = kind.Extension
		}
	}
	if len(ext) == 0 {
		return fmt.Errorf("unable to guess type of '%s'", fileName)
	}

	dir := t.ImagesDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := t.removePublished(setting); err != nil {
		return err
	}

	target := filepath.Join(dir, setting+"."+ext)
	if err := os.WriteFile(target, t.fitImage(f.Content, ext), 0o644); err != nil {
		return err
	}
	t.log.Info("Setting image published", zap.String("setting", setting), zap.String("path", target))
	return nil
}

// removePublished deletes images previously published for setting.
func (t *Theme) removePublished(setting string) error {
	old, err := filepath.Glob(filepath.Join(t.ImagesDir(), globEscape(setting)+".*"))
	if err != nil {
		return err
	}
	var errs error
	for _, name := range old {
		errs = multierr.Append(errs, os.Remove(name))
	}
	if errs != nil {
		return fmt.Errorf("unable to remove old images: %w", errs)
	}
	return nil
}

// ClearSettingsImage removes image of the setting from host file storage and
// data root, then resets caches.
func (t *Theme) ClearSettingsImage(ctx context.Context, element string) error {
	setting := SettingName(element)
	fileName, ok, err := t.db.Config(ctx, t.cfg.Theme.Component, setting)
	if err != nil {
		return err
	}
	if ok && len(fileName) > 0 {
		err = t.db.DeleteFile(ctx, t.settingFileHash(setting, fileName))
	}
	err = multierr.Combine(err,
		t.db.UnsetConfig(ctx, t.cfg.Theme.Component, setting),
		t.removePublished(setting))
	if err != nil {
		return fmt.Errorf("unable to clear image for %s: %w", setting, err)
	}
	t.log.Info("Setting image cleared", zap.String("setting", setting))
	return t.ResetCaches(ctx)
}

// fitImage downscales raster image wider than configured limit keeping
// aspect ratio. Anything which could not be processed is returned unchanged.
func (t *Theme) fitImage(data []byte, ext string) []byte {
	limit := t.cfg.Images.MaxWidth
	if limit <= 0 || !filetype.IsImage(data) {
		return data
	}
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		t.log.Debug("Image format could not be encoded, keeping original", zap.String("ext", ext))
		return data
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.log.Warn("Unable to decode image, keeping original", zap.Error(err))
		return data
	}
	if img.Bounds().Dx() <= limit {
		return data
	}

	resized := imaging.Resize(img, limit, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format,
		imaging.JPEGQuality(t.cfg.Images.JPEGQuality),
		imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		t.log.Warn("Unable to encode resized image, keeping original", zap.Error(err))
		return data
	}
	t.log.Debug("Image resized",
		zap.Int("from", img.Bounds().Dx()),
		zap.Int("to", resized.Bounds().Dx()))
	return buf.Bytes()
}

func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ResetCaches bumps theme revision so clients reload styles and removes
// compiled theme caches.
func (t *Theme) ResetCaches(ctx context.Context) error {
	rev := time.Now().Unix()
	if v, ok, err := t.db.Config(ctx, "core", "themerev"); err != nil {
		return err
	} else if ok {
		if prev, err := strconv.ParseInt(v, 10, 64); err == nil && prev >= rev {
			rev = prev + 1
		}
	}
	err := t.db.SetConfig(ctx, "core", "themerev", strconv.FormatInt(rev, 10))
	err = multierr.Append(err, os.RemoveAll(t.CacheDir()))
	if err != nil {
		return fmt.Errorf("unable to reset theme caches: %w", err)
	}
	t.log.Debug("Theme caches reset", zap.Int64("rev", rev))
	return nil
}

// Revision returns current theme revision, 0 when caches were never reset.
func (t *Theme) Revision(ctx context.Context) (int64, error) {
	v, ok, err := t.db.Config(ctx, "core", "themerev")
	if err != nil || !ok {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}
