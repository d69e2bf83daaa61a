package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/decors/internal/notify"
	"github.com/mesh-intelligence/decors/internal/paths"
	"github.com/mesh-intelligence/decors/internal/provider"
	"github.com/mesh-intelligence/decors/internal/router"
	"github.com/mesh-intelligence/decors/internal/sqlite"
	"github.com/mesh-intelligence/decors/pkg/types"
)

// session is an attached backend and the provider in front of it.
type session struct {
	dataDir  string
	backend  *sqlite.Backend
	provider *provider.Provider
	app      *app
}

// open resolves the data directory and attaches the backend. The caller
// must defer s.close().
func (a *app) open() (*session, error) {
	dataDir, err := paths.ResolveDataDir(a.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, systemError{fmt.Errorf("resolve data dir: %w", err)}
	}

	cfg := types.Config{
		Backend: a.cfg.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	b := sqlite.NewBackend().WithLogger(a.logger)
	if err := b.Attach(cfg); err != nil {
		if errors.Is(err, types.ErrBackendEmpty) || errors.Is(err, types.ErrBackendUnknown) {
			return nil, fmt.Errorf("config %s: %w", cfgKeyBackend, err)
		}
		if errors.Is(err, types.ErrSchemaDowngrade) {
			return nil, err
		}
		return nil, systemError{fmt.Errorf("attach storage: %w", err)}
	}

	observers := notify.NewRegistry().WithLogger(a.logger)
	p := provider.New(router.Default(), b, observers).WithLogger(a.logger)
	return &session{dataDir: dataDir, backend: b, provider: p, app: a}, nil
}

func (s *session) close() {
	if err := s.backend.Detach(); err != nil {
		s.app.logger.Error("detach failed", "error", err)
	}
}

// locatorArg turns a bare id into an item locator; anything else is taken
// as a locator and left for the router to judge.
func locatorArg(arg string) string {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id >= 0 {
		return types.ItemLocator(id)
	}
	return arg
}

// FormatPrice renders a price the way the catalog shows it: zero is "Free",
// anything else is in PLN with two decimals.
func FormatPrice(p decimal.Decimal) string {
	if p.IsZero() {
		return "Free"
	}
	return "PLN " + p.StringFixed(2)
}

// decorFlags binds the per-field flags shared by add and update.
type decorFlags struct {
	name          string
	description   string
	material      string
	height        int
	price         string
	quantity      int
	supplierName  string
	supplierEmail string
	imagePath     string
}

func (f *decorFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "decor name")
	fs.StringVar(&f.description, "description", "", "free-form description")
	fs.StringVar(&f.material, "material", "", "glass, wood, metal, fabric, unspecified, or its number")
	fs.IntVar(&f.height, "height", 0, "height in centimetres")
	fs.StringVar(&f.price, "price", "", "price in PLN, e.g. 8.50")
	fs.IntVar(&f.quantity, "quantity", 0, "units in stock")
	fs.StringVar(&f.supplierName, "supplier-name", "", "supplier name")
	fs.StringVar(&f.supplierEmail, "supplier-email", "", "supplier email")
	fs.StringVar(&f.imagePath, "image", "", "path to an image file")
}

// values returns the fields whose flags were set on cmd.
func (f *decorFlags) values(cmd *cobra.Command) (types.DecorValues, error) {
	var v types.DecorValues
	changed := cmd.Flags().Changed

	if changed("name") {
		v.Name = types.Ptr(f.name)
	}
	if changed("description") {
		v.Description = types.Ptr(f.description)
	}
	if changed("material") {
		m, err := types.ParseMaterial(f.material)
		if err != nil {
			return v, err
		}
		v.Material = types.Ptr(m)
	}
	if changed("height") {
		v.Height = types.Ptr(f.height)
	}
	if changed("price") {
		p, err := decimal.NewFromString(strings.TrimSpace(f.price))
		if err != nil {
			return v, &types.ValidationError{Field: types.ColumnPrice, Reason: "not a number: " + strconv.Quote(f.price)}
		}
		v.Price = types.Ptr(p)
	}
	if changed("quantity") {
		v.Quantity = types.Ptr(f.quantity)
	}
	if changed("supplier-name") {
		v.SupplierName = types.Ptr(f.supplierName)
	}
	if changed("supplier-email") {
		v.SupplierEmail = types.Ptr(f.supplierEmail)
	}
	if changed("image") {
		var img []byte
		if f.imagePath != "" {
			data, err := os.ReadFile(f.imagePath)
			if err != nil {
				return v, fmt.Errorf("read image: %w", err)
			}
			img = data
		}
		v.Image = types.Ptr(img)
	}
	return v, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return systemError{fmt.Errorf("marshal JSON: %w", err)}
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// printTable writes one line per decor.
func printTable(w io.Writer, decors []*types.Decor) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMATERIAL\tPRICE\tQTY")
	for _, d := range decors {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", d.ID, d.Name, d.Material, FormatPrice(d.Price), d.Quantity)
	}
	return tw.Flush()
}

// printDecor writes every field of d, one per line.
func printDecor(w io.Writer, d *types.Decor) {
	fmt.Fprintf(w, "ID:          %d\n", d.ID)
	fmt.Fprintf(w, "Name:        %s\n", d.Name)
	if d.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", d.Description)
	}
	fmt.Fprintf(w, "Material:    %s\n", d.Material)
	fmt.Fprintf(w, "Height:      %d cm\n", d.Height)
	fmt.Fprintf(w, "Price:       %s\n", FormatPrice(d.Price))
	fmt.Fprintf(w, "Quantity:    %d\n", d.Quantity)
	if d.SupplierName != "" {
		fmt.Fprintf(w, "Supplier:    %s\n", d.SupplierName)
	}
	if d.SupplierEmail != "" {
		fmt.Fprintf(w, "Email:       %s\n", d.SupplierEmail)
	}
	if len(d.Image) > 0 {
		fmt.Fprintf(w, "Image:       %d bytes\n", len(d.Image))
	}
}
