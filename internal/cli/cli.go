// Package cli implements the storefront command line client. The cart lives
// in a file under the user's config directory; everything else goes through
// the storefront API.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/IhossainpHero/Arboom-bd/internal/client"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/myorders"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
	"github.com/IhossainpHero/Arboom-bd/internal/storage/file"
	"github.com/IhossainpHero/Arboom-bd/internal/wire"
)

// Config is read from STOREFRONT_ environment variables and an optional
// storefront.yaml in the arboom config directory.
type Config struct {
	APIURL   string        `default:"http://localhost:8080" usage:"Storefront API base URL"`
	Timeout  time.Duration `default:"15s" usage:"Upper bound for one API request"`
	CartFile string        `usage:"Cart file; defaults to arboom/cart.json in the user config directory"`
	Shipping struct {
		Inside  string `default:"80" usage:"Shipping fee inside the city"`
		Outside string `default:"120" usage:"Shipping fee outside the city"`
	}
}

// API is the part of the storefront API the CLI uses.
type API interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	CreateProduct(ctx context.Context, in product.Input) (*product.Product, error)
	DeleteProduct(ctx context.Context, id string) (*wire.DeleteResult, error)
	Login(ctx context.Context, email, password string) error
	SubmitOrder(ctx context.Context, d order.Draft) (*order.Order, error)
	myorders.API
}

var _ API = (*client.Client)(nil)

// App holds the dependencies of one CLI invocation.
type App struct {
	API     API
	Cart    *cart.Cart
	Fees    order.ShippingFees
	Timeout time.Duration
	Logger  *zap.Logger
	Out     io.Writer

	in *bufio.Reader
}

// NewApp creates an App reading prompts from in.
func NewApp(api API, c *cart.Cart, fees order.ShippingFees, timeout time.Duration, lg *zap.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		API:     api,
		Cart:    c,
		Fees:    fees,
		Timeout: timeout,
		Logger:  lg,
		Out:     out,
		in:      bufio.NewReader(in),
	}
}

// flags are the global command line overrides.
type flags struct {
	apiURL   string
	cartFile string
	timeout  time.Duration
	verbose  bool
}

// NewCommand builds the command tree. A nil app is built from configuration
// before the first subcommand runs.
func NewCommand(app *App) *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Arboom storefront client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if app != nil {
				return nil
			}
			built, err := buildApp(cmd.Context(), cmd, f)
			if err != nil {
				return err
			}
			app = built
			return nil
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.apiURL, "api-url", "", "storefront API base URL")
	pf.StringVar(&f.cartFile, "cart-file", "", "cart file path")
	pf.DurationVar(&f.timeout, "timeout", 0, "request timeout")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")

	get := func() *App { return app }
	root.AddCommand(
		productsCommand(get),
		cartCommand(get),
		checkoutCommand(get),
		ordersCommand(get),
		cancelCommand(get),
		adminCommand(get),
	)
	return root
}

func loadConfig() (*Config, error) {
	var cfg Config
	files := []string{"storefront.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		files = append(files, filepath.Join(dir, "arboom", "storefront.yaml"))
	}
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func buildApp(ctx context.Context, cmd *cobra.Command, f flags) (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if f.apiURL != "" {
		cfg.APIURL = f.apiURL
	}
	if f.cartFile != "" {
		cfg.CartFile = f.cartFile
	}
	if f.timeout > 0 {
		cfg.Timeout = f.timeout
	}

	lg, err := newLogger(f.verbose)
	if err != nil {
		return nil, errors.Wrap(err, "create logger")
	}

	fees, err := order.ParseShippingFees(cfg.Shipping.Inside, cfg.Shipping.Outside)
	if err != nil {
		return nil, errors.Wrap(err, "shipping")
	}

	path := cfg.CartFile
	if path == "" {
		if path, err = file.DefaultCartPath(); err != nil {
			return nil, errors.Wrap(err, "locate cart file")
		}
	}
	c, err := cart.Load(ctx, file.NewCartStore(path), lg)
	if err != nil {
		return nil, err
	}
	lg.Debug("Cart loaded", zap.String("path", path), zap.Int("lines", c.Len()))

	api := client.New(cfg.APIURL, cfg.Timeout)
	return NewApp(api, c, fees, cfg.Timeout, lg, cmd.InOrStdin(), cmd.OutOrStdout()), nil
}

// ask prints label and reads one trimmed line.
func (a *App) ask(label string) (string, error) {
	if _, err := io.WriteString(a.Out, label+": "); err != nil {
		return "", err
	}
	line, err := a.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", errors.Wrap(err, "read answer")
	}
	return strings.TrimSpace(line), nil
}

// askIfEmpty prompts for *v when it is blank.
func (a *App) askIfEmpty(v *string, label string) error {
	if strings.TrimSpace(*v) != "" {
		return nil
	}
	s, err := a.ask(label)
	if err != nil {
		return err
	}
	*v = s
	return nil
}

// Confirm asks a yes/no question; anything but y or yes declines.
func (a *App) Confirm(_ context.Context, prompt string) (bool, error) {
	ans, err := a.ask(prompt + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(ans) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// call bounds a single API request.
func (a *App) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.Timeout)
}
