// Package seed loads demo categories, accounts and listings from YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"rewear/internal/logger"
	"rewear/internal/models"
	"rewear/internal/repositories"
	"rewear/internal/services"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type File struct {
	Categories []string  `yaml:"categories"`
	Users      []User    `yaml:"users"`
	Products   []Product `yaml:"products"`
}

type User struct {
	FirstName    string      `yaml:"first_name"`
	LastName     string      `yaml:"last_name"`
	Phone        string      `yaml:"phone"`
	Email        string      `yaml:"email"`
	Password     string      `yaml:"password"`
	Role         models.Role `yaml:"role"`
	Address      string      `yaml:"address"`
	PostalCode   string      `yaml:"postal_code"`
	BusinessName string      `yaml:"business_name"`
	TaxID        string      `yaml:"tax_id"`
}

// Product is a listing owned by the user whose email is Seller.
type Product struct {
	Seller      string               `yaml:"seller"`
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Price       float64              `yaml:"price"`
	Category    string               `yaml:"category"`
	Images      []string             `yaml:"images"`
	Status      models.ProductStatus `yaml:"status"`
}

// Result counts what Apply created. Existing records are skipped.
type Result struct {
	Categories int
	Users      int
	Products   int
}

func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(r io.Reader) (*File, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &file, nil
}

// Apply writes the file. Running it twice creates nothing the second time.
func Apply(ctx context.Context, store repositories.Store, auth *services.AuthService, file *File) (Result, error) {
	var res Result
	log := logger.FromCtx(ctx)

	for _, name := range file.Categories {
		err := store.Categories().Create(ctx, &models.Category{Name: name})
		switch {
		case err == nil:
			res.Categories++
		case errors.Is(err, repositories.ErrDuplicate):
		default:
			return res, fmt.Errorf("category %q: %w", name, err)
		}
	}

	for _, u := range file.Users {
		role := u.Role
		if role == "" {
			role = models.RoleBuyer
		}
		user := &models.User{
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Phone:        u.Phone,
			Email:        u.Email,
			Password:     u.Password,
			Address:      u.Address,
			PostalCode:   u.PostalCode,
			BusinessName: u.BusinessName,
			TaxID:        u.TaxID,
		}
		err := auth.Register(ctx, user, role)
		switch {
		case err == nil:
			res.Users++
		case errors.Is(err, services.ErrAlreadyExists):
		default:
			return res, fmt.Errorf("user %s: %w", u.Email, err)
		}
	}

	for _, p := range file.Products {
		created, err := applyProduct(ctx, store, p)
		if err != nil {
			return res, fmt.Errorf("product %q: %w", p.Name, err)
		}
		if created {
			res.Products++
		}
	}

	log.Info("seed applied",
		zap.Int("categories", res.Categories),
		zap.Int("users", res.Users),
		zap.Int("products", res.Products),
	)
	return res, nil
}

func applyProduct(ctx context.Context, store repositories.Store, p Product) (bool, error) {
	seller, err := store.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(p.Seller)))
	if err != nil {
		return false, fmt.Errorf("seller %s: %w", p.Seller, err)
	}
	if seller.Role != models.RoleSeller {
		return false, fmt.Errorf("%s is not a seller: %w", p.Seller, services.ErrInvalidInput)
	}

	existing, _, err := store.Products().List(ctx, repositories.ProductFilter{SellerID: seller.ID, Query: p.Name, PageSize: 100})
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if strings.EqualFold(e.Name, p.Name) {
			return false, nil
		}
	}

	status := p.Status
	if status == "" {
		status = models.ProductApproved
	}
	sellerName := seller.BusinessName
	if sellerName == "" {
		sellerName = seller.FullName()
	}
	return true, store.Products().Create(ctx, &models.Product{
		SellerID:    seller.ID,
		SellerName:  sellerName,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Images:      p.Images,
		Status:      status,
	})
}
