package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"FolderIcon/internal/config"
	"FolderIcon/internal/domain/model"
	"FolderIcon/internal/gui"
	"FolderIcon/internal/infrastructure/filesystem"
	"FolderIcon/internal/infrastructure/logging"
	"FolderIcon/internal/infrastructure/platform"
	"FolderIcon/internal/interface/ui"
	"FolderIcon/internal/usecase/iconize"
	"FolderIcon/internal/usecase/report"
)

const selectTitle = "アイコンを設定するフォルダを選択"

type options struct {
	configPath string
	envFile    string
	noColor    bool
	noPause    bool
}

// application は 1 回の実行で使う依存関係をまとめたものです
type application struct {
	cfg       config.Config
	logger    logging.Logger
	scanner   *filesystem.Scanner
	report    *report.Generator
	processor *iconize.Processor
	closeLog  func() error
}

// directorySelector はフォルダ選択ダイアログの共通インターフェースです
type directorySelector interface {
	SelectDirectory(title string) (string, error)
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "foldericon [dir]",
		Short:         "*_icon.ico を含むフォルダに desktop.ini を作成してアイコンを設定します",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIconize(cmd, opts, args)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "設定ファイルのパス（省略時は foldericon.yml を探します）")
	flags.StringVar(&opts.envFile, "env-file", ".env", "読み込む .env ファイル")
	flags.BoolVar(&opts.noColor, "no-color", false, "色付き出力を無効にする")
	cmd.Flags().BoolVar(&opts.noPause, "no-pause", false, "終了前に Enter キーを待たない")

	cmd.AddCommand(newClearCacheCommand(opts), newConfigCommand(opts))
	return cmd
}

func newClearCacheCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "エクスプローラーのアイコンキャッシュだけを削除します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer app.closeLog()

			deleted, err := app.processor.ClearIconCache()
			app.report.WriteCacheResult(deleted, err)
			return nil
		},
	}
}

func newConfigCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "有効な設定を YAML で表示します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadEnvFile(opts.envFile); err != nil {
				return err
			}
			cfg, source, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return fmt.Errorf("設定を出力できません: %w", err)
			}
			out := cmd.OutOrStdout()
			if source == "" {
				source = "(既定値)"
			}
			fmt.Fprintf(out, "# %s\n%s", source, data)
			return nil
		},
	}
}

func runIconize(cmd *cobra.Command, opts *options, args []string) error {
	out := cmd.OutOrStdout()
	app, err := opts.setup(out)
	if err != nil {
		return err
	}
	defer app.closeLog()

	root, err := app.selectRoot(args)
	if err != nil {
		if errors.Is(err, model.ErrCancelled) {
			app.logger.Log("ERROR", "フォルダが選択されなかったため終了します", err)
			return fmt.Errorf("フォルダが選択されなかったため終了します")
		}
		app.logger.Log("ERROR", "フォルダ選択に失敗", err)
		return err
	}

	app.report.WriteHeader(root, app.cfg)
	stats, err := app.processor.Run(cmd.Context(), root)
	if err != nil {
		app.logger.Log("ERROR", "処理に失敗しました", err)
		return err
	}
	app.logger.Log("INFO", fmt.Sprintf("作成 %d 件, 隠しファイル %d 件, 解除 %d 件", stats.DescriptorsCreated, stats.Hidden, stats.Unhidden), nil)

	// プログラム終了前にEnterキーの入力を待機
	if !opts.noPause {
		fmt.Fprint(out, "\nEnterキーを押して終了してください...")
		fmt.Fscanln(cmd.InOrStdin())
	}
	return nil
}

// setup は設定を読み込み、ロガーと各コンポーネントを初期化します
func (o *options) setup(out io.Writer) (*application, error) {
	if o.noColor {
		color.NoColor = true
	}

	if err := config.LoadEnvFile(o.envFile); err != nil {
		return nil, err
	}
	cfg, source, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	var logWriter io.Writer = os.Stderr
	closeLog := func() error { return nil }
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("ログファイルを開けません: %w", err)
		}
		logWriter = f
		closeLog = f.Close
	}
	logger, err := logging.NewLeveledJSONLogger(logWriter, cfg.LogLevel)
	if err != nil {
		closeLog()
		return nil, err
	}
	if source != "" {
		logger.Log("INFO", fmt.Sprintf("設定ファイルを読み込みました: %s", source), nil)
	}

	plat, err := platform.New(cfg.Attributes)
	if err != nil {
		closeLog()
		return nil, err
	}

	fs := afero.NewOsFs()
	gen := report.NewGenerator(out)
	processor, err := iconize.NewProcessor(cfg, fs, plat, gen, logger)
	if err != nil {
		closeLog()
		return nil, err
	}

	return &application{
		cfg:       cfg,
		logger:    logger,
		scanner:   filesystem.NewScanner(fs, logger),
		report:    gen,
		processor: processor,
		closeLog:  closeLog,
	}, nil
}

// selectRoot は引数で指定されたフォルダ、なければダイアログで選択されたフォルダを返します
func (a *application) selectRoot(args []string) (string, error) {
	if len(args) == 1 {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("パスを解決できません: %w", err)
		}
		if err := a.scanner.ValidateDirectoryPath(root); err != nil {
			return "", err
		}
		return root, nil
	}

	return newSelector(a.cfg.Picker, a.scanner).SelectDirectory(selectTitle)
}

func newSelector(picker string, validator filesystem.DirectoryValidator) directorySelector {
	if picker == config.PickerFyne {
		return gui.NewDirectorySelector(validator)
	}
	return ui.NewDirectorySelector(validator)
}
