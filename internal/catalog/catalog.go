package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	MinProducts = 1
	MaxProducts = 3
)

var ErrProductNotFound = errors.New("product not found")

// Product is a purchasable ticket bundle.
type Product struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	Price       decimal.Decimal `yaml:"price" json:"price"`
	Icon        string          `yaml:"icon" json:"icon"`
	Popular     bool            `yaml:"popular" json:"popular"`
	Tickets     int             `yaml:"tickets" json:"tickets"`
	PixPayload  string          `yaml:"pix_payload" json:"pix_payload,omitempty"`
	PixKey      string          `yaml:"pix_key" json:"pix_key,omitempty"`
}

type file struct {
	Products []productYAML `yaml:"products"`
}

// decimal has no yaml unmarshaler, so prices are read as strings.
type productYAML struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Icon        string `yaml:"icon"`
	Popular     bool   `yaml:"popular"`
	Tickets     int    `yaml:"tickets"`
	PixPayload  string `yaml:"pix_payload"`
	PixKey      string `yaml:"pix_key"`
}

// Catalog is an ordered, read-only set of products.
type Catalog struct {
	products []Product
	byID     map[string]Product
}

// Default is the single combo sold at the youth cinema night.
func Default() *Catalog {
	c, _ := New([]Product{{
		ID:          "combo_individual",
		Name:        "Combo Individual",
		Description: "Ingresso + Pipoca + Refri",
		Price:       decimal.RequireFromString("10.00"),
		Icon:        "🍿",
		Popular:     true,
		Tickets:     1,
		PixPayload:  "00020126510014BR.GOV.BCB.PIX0111090957113900214CINEMA JOVENS 5204000053039865802BR5925JOEL ABREU MARTINS DE ALM6015FORMOSO DO ARAG62070503***630421BB",
		PixKey:      "090.957.113-90",
	}})
	return c
}

// New validates products and builds a catalog preserving their order.
func New(products []Product) (*Catalog, error) {
	if len(products) < MinProducts || len(products) > MaxProducts {
		return nil, fmt.Errorf("catalog must have between %d and %d products, got %d", MinProducts, MaxProducts, len(products))
	}

	c := &Catalog{byID: make(map[string]Product, len(products))}
	for i, p := range products {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("product %d: id is required", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %q: duplicate id", p.ID)
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("product %q: name is required", p.ID)
		}
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("product %q: price must be positive", p.ID)
		}
		if p.Tickets < 1 {
			return nil, fmt.Errorf("product %q: tickets must be at least 1", p.ID)
		}
		p.Price = p.Price.Round(2)
		c.products = append(c.products, p)
		c.byID[p.ID] = p
	}
	return c, nil
}

// Parse reads a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	products := make([]Product, 0, len(f.Products))
	for _, raw := range f.Products {
		price, err := decimal.NewFromString(strings.TrimSpace(raw.Price))
		if err != nil {
			return nil, fmt.Errorf("product %q: invalid price %q: %w", raw.ID, raw.Price, err)
		}
		tickets := raw.Tickets
		if tickets == 0 {
			tickets = 1
		}
		products = append(products, Product{
			ID:          raw.ID,
			Name:        raw.Name,
			Description: raw.Description,
			Price:       price,
			Icon:        raw.Icon,
			Popular:     raw.Popular,
			Tickets:     tickets,
			PixPayload:  raw.PixPayload,
			PixKey:      raw.PixKey,
		})
	}
	return New(products)
}

// Load returns the catalog in path, or Default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return Parse(data)
}

func (c *Catalog) Get(id string) (Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}
