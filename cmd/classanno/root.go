package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/hupe1980/classanno"
	"github.com/hupe1980/classanno/artifact"
	"github.com/hupe1980/classanno/blobstore"
	miniostore "github.com/hupe1980/classanno/blobstore/minio"
	s3store "github.com/hupe1980/classanno/blobstore/s3"
	"github.com/hupe1980/classanno/codec"
	"github.com/hupe1980/classanno/resource"
)

type globalFlags struct {
	classpath   []string
	codec       string
	logLevel    string
	memoryLimit int64
	workers     int64
	ioLimit     int64
	cacheSize   int
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "classanno",
		Short: "Inspect the annotations of compiled JVM classes",
		Long: `classanno scans compiled class files and prints the annotations attached
to their methods, fields and parameters, keyed by JVM member signature.

Classpath entries may be directories, jar files, s3://bucket/prefix or
minio://host:port/bucket/prefix (credentials from MINIO_ACCESS_KEY and
MINIO_SECRET_KEY).`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringSliceVarP(&flags.classpath, "classpath", "c", []string{"."}, "classpath entries, searched in order")
	pf.StringVar(&flags.codec, "codec", codec.Default.Name(), "output codec ("+strings.Join(codec.Names, ", ")+")")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.Int64Var(&flags.memoryLimit, "memory-limit", 0, "max raw class bytes held at once (0 = unlimited)")
	pf.Int64Var(&flags.workers, "workers", 4, "concurrent scans")
	pf.Int64Var(&flags.ioLimit, "io-limit", 0, "max artifact read bytes per second (0 = unlimited)")
	pf.IntVar(&flags.cacheSize, "cache-size", artifact.DefaultCacheSize, "classpath resolution cache size")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newDumpCmd(flags))
	rootCmd.AddCommand(newQueryCmd(flags))
	return rootCmd
}

// env bundles what the commands need.
type env struct {
	classpath    *artifact.Classpath
	deserializer *classanno.Deserializer
	codec        codec.Codec
}

func (f *globalFlags) open(ctx context.Context, cmd *cobra.Command) (*env, error) {
	c, ok := codec.ByName(f.codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", f.codec)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", f.logLevel, err)
	}
	logger := classanno.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   f.memoryLimit,
		MaxWorkers:         f.workers,
		IOLimitBytesPerSec: f.ioLimit,
	})

	roots := make([]artifact.Root, 0, len(f.classpath))
	for _, entry := range f.classpath {
		root, err := openRoot(ctx, entry, rc)
		if err != nil {
			for _, r := range roots {
				if jr, ok := r.(*artifact.JarRoot); ok {
					_ = jr.Close()
				}
			}
			return nil, fmt.Errorf("classpath entry %q: %w", entry, err)
		}
		roots = append(roots, root)
	}

	cp, err := artifact.NewClasspath(f.cacheSize, roots...)
	if err != nil {
		return nil, err
	}

	d := classanno.New(
		classanno.WithResolver(cp),
		classanno.WithLogger(logger),
		classanno.WithResourceController(rc),
	)
	return &env{classpath: cp, deserializer: d, codec: c}, nil
}

func (e *env) Close() error { return e.classpath.Close() }

func openRoot(ctx context.Context, entry string, rc *resource.Controller) (artifact.Root, error) {
	if u, err := url.Parse(entry); err == nil && (u.Scheme == "s3" || u.Scheme == "minio") {
		store, err := openRemote(ctx, u)
		if err != nil {
			return nil, err
		}
		return artifact.NewStoreRoot(entry, store, rc), nil
	}

	info, err := os.Stat(entry)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return artifact.NewStoreRoot(entry, blobstore.NewLocalStore(entry), rc), nil
	}
	store := blobstore.NewLocalStore(filepath.Dir(entry))
	return artifact.OpenJar(ctx, store, filepath.Base(entry), rc)
}

func openRemote(ctx context.Context, u *url.URL) (blobstore.Store, error) {
	switch u.Scheme {
	case "s3":
		return s3store.New(ctx, u.Host, s3store.WithPrefix(strings.TrimPrefix(u.Path, "/")))
	case "minio":
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if bucket == "" {
			return nil, fmt.Errorf("missing bucket in %q", u)
		}
		client, err := minio.New(u.Host, &minio.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: os.Getenv("MINIO_SECURE") == "true",
		})
		if err != nil {
			return nil, err
		}
		return miniostore.NewStore(client, bucket, prefix), nil
	}
	return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
}

func write(cmd *cobra.Command, c codec.Codec, v any) error {
	out, err := codec.MarshalPretty(c, v)
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
