package cmd

import (
	"os"
	"os/signal"
	"syscall"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/file-extractor/internal/extractor/dao"
	"github.com/Laisky/file-extractor/internal/extractor/model"
	"github.com/Laisky/file-extractor/internal/extractor/service"
	minioDB "github.com/Laisky/file-extractor/library/db/minio"
	"github.com/Laisky/file-extractor/library/db/mongo"
	"github.com/Laisky/file-extractor/library/log"
)

var extractCMD = &cobra.Command{
	Use:   "extract",
	Short: "extract",
	Long:  `scan a folder and upload file metadata to raw and file content to the object store`,
	Args:  gcmd.NoExtraArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd)
	},
	Run: runExtract,
}

func init() {
	extractCMD.Flags().StringP("input-dir", "i", "", "folder path of the files to process")
	extractCMD.Flags().StringP("pattern", "p", "*", "filename pattern to match against")
	extractCMD.Flags().Bool("non-recursive", false, "do not search recursively for files")
	extractCMD.Flags().Bool("upload-files", false, "upload file content to the object store")
	extractCMD.Flags().Bool("upload-raw", false, "upload file metadata to raw")
	extractCMD.Flags().Bool("no-overwrite", false, "do not overwrite already uploaded files")
	extractCMD.Flags().Bool("ignore-meta", false, "ignore metadata when uploading file content")
	extractCMD.Flags().String("raw-db", "LandingZone", "which raw database")
	extractCMD.Flags().String("raw-table", "FileExtractor", "which table in raw")
	extractCMD.Flags().Int("concurrency", 1, "number of concurrent file uploads")
	if err := extractCMD.MarkFlagRequired("input-dir"); err != nil {
		log.Logger.Panic("mark flag required", zap.Error(err))
	}

	rootCMD.AddCommand(extractCMD)
}

func runExtract(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := service.ProcessConfig{
		InputDir:    gconfig.Shared.GetString("input-dir"),
		Pattern:     gconfig.Shared.GetString("pattern"),
		Recursive:   !gconfig.Shared.GetBool("non-recursive"),
		UploadRaw:   gconfig.Shared.GetBool("upload-raw"),
		UploadFiles: gconfig.Shared.GetBool("upload-files"),
		Overwrite:   !gconfig.Shared.GetBool("no-overwrite"),
		IgnoreMeta:  gconfig.Shared.GetBool("ignore-meta"),
		RawTable: model.TableID{
			Database: gconfig.Shared.GetString("raw-db"),
			Table:    gconfig.Shared.GetString("raw-table"),
		},
		Concurrency: gconfig.Shared.GetInt("concurrency"),
	}

	if fi, err := os.Stat(cfg.InputDir); err != nil || !fi.IsDir() {
		log.Logger.Error("input folder does not exist",
			zap.String("input_dir", cfg.InputDir))
		os.Exit(2)
	}

	var rows service.RowStore
	if cfg.UploadRaw {
		db, err := mongo.NewDB(ctx, log.Logger, mongo.DialInfo{
			Addr:   gconfig.Shared.GetString("settings.mongo.addr"),
			User:   gconfig.Shared.GetString("settings.mongo.user"),
			Pwd:    gconfig.Shared.GetString("settings.mongo.pwd"),
			AuthDB: gconfig.Shared.GetString("settings.mongo.authdb"),
		})
		if err != nil {
			log.Logger.Error("connect to mongodb", zap.Error(err))
			os.Exit(1)
		}
		defer func() {
			if err := db.Close(ctx); err != nil {
				log.Logger.Error("close mongodb", zap.Error(err))
			}
		}()

		rows = dao.NewRaw(log.Logger, db)
	}

	var blobs service.BlobStore
	if cfg.UploadFiles {
		cli, err := minioDB.New(ctx, minioDB.DialInfo{
			Endpoint:  gconfig.Shared.GetString("settings.minio.endpoint"),
			AccessKey: gconfig.Shared.GetString("settings.minio.access_key"),
			Secret:    gconfig.Shared.GetString("settings.minio.secret"),
			Bucket:    gconfig.Shared.GetString("settings.minio.bucket"),
			UseSSL:    gconfig.Shared.GetBool("settings.minio.ssl"),
		})
		if err != nil {
			log.Logger.Error("connect to object store", zap.Error(err))
			os.Exit(1)
		}

		blobs = dao.NewBlob(log.Logger, cli.Client, cli.Bucket())
	}

	pipeline := service.NewPipeline(log.Logger, rows, blobs)
	if _, err := pipeline.Process(ctx, cfg); err != nil {
		log.Logger.Error("process input dir", zap.Error(err))
		os.Exit(1)
	}
}
