package services

import (
	"context"
	"fmt"
	"strings"

	"rewear/internal/logger"
	"rewear/internal/mailer"
	"rewear/internal/models"
	"rewear/internal/repositories"

	"go.uber.org/zap"
)

// Notifier turns domain events into emails. Delivery failures are logged and
// never returned: a lost notification must not undo the operation behind it.
type Notifier struct {
	mailer mailer.Mailer
	users  repositories.UserRepository
}

func NewNotifier(m mailer.Mailer, users repositories.UserRepository) *Notifier {
	return &Notifier{mailer: m, users: users}
}

func (n *Notifier) send(ctx context.Context, to []string, subject, body string) {
	if n == nil || len(to) == 0 {
		return
	}
	if err := n.mailer.Send(ctx, mailer.Message{To: to, Subject: subject, Body: body}); err != nil {
		logger.FromCtx(ctx).Warn("notification not delivered",
			zap.String("subject", subject),
			zap.Strings("to", to),
			zap.Error(err),
		)
	}
}

func (n *Notifier) emailsByRole(ctx context.Context, role models.Role) []string {
	if n == nil {
		return nil
	}
	users, err := n.users.ListByRole(ctx, role)
	if err != nil {
		logger.FromCtx(ctx).Warn("failed to list recipients", zap.String("role", string(role)), zap.Error(err))
		return nil
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return emails
}

func (n *Notifier) Welcome(ctx context.Context, user *models.User) {
	n.send(ctx, []string{user.Email}, "Welcome to Revive & Rewear",
		fmt.Sprintf("Hi %s,\nyour %s account is ready.", user.FirstName, user.Role))
}

func (n *Notifier) MFACode(ctx context.Context, email, code string) {
	n.send(ctx, []string{email}, "Your login code",
		fmt.Sprintf("Your verification code is %s. It expires shortly and can only be used once.", code))
}

func (n *Notifier) ProductReviewed(ctx context.Context, product *models.Product) {
	if n == nil {
		return
	}
	seller, err := n.users.GetByID(ctx, product.SellerID)
	if err != nil {
		logger.FromCtx(ctx).Warn("seller not found for review notification", zap.String("product_id", product.ID), zap.Error(err))
		return
	}
	body := fmt.Sprintf("Your product %q was %s.", product.Name, product.Status)
	if product.ReviewComments != "" {
		body += "\nComments: " + product.ReviewComments
	}
	n.send(ctx, []string{seller.Email}, "Product review result", body)
}

func (n *Notifier) CouponCreated(ctx context.Context, coupon *models.Coupon) {
	n.send(ctx, n.emailsByRole(ctx, models.RoleBuyer), "New coupon available",
		fmt.Sprintf("%s is offering %.0f%% off with code %s.", coupon.SellerName, coupon.DiscountPercentage, coupon.Code))
}

func (n *Notifier) ComplaintReceived(ctx context.Context, c *models.Complaint) {
	n.send(ctx, []string{c.Email}, "We received your request",
		fmt.Sprintf("Hi %s,\nyour %s request (%s) is %s.", c.FirstName, strings.ToLower(c.IssueType), c.ID, c.Status))
	n.send(ctx, n.emailsByRole(ctx, models.RoleAdmin), "New "+c.IssueType,
		fmt.Sprintf("From %s <%s>:\n%s", c.FirstName, c.Email, c.Details))
}

func (n *Notifier) ComplaintClosed(ctx context.Context, c *models.Complaint) {
	n.send(ctx, []string{c.Email}, "Your request was resolved",
		fmt.Sprintf("Request %s is closed.\nResolution: %s", c.ID, c.Resolution))
}

// OrderEvent emails the buyer about an order change.
func (n *Notifier) OrderEvent(ctx context.Context, ev OrderEvent) {
	var subject, body string
	switch ev.Type {
	case EventOrderPlaced:
		subject = "Order confirmation"
		body = fmt.Sprintf("Thanks for your order %s. Total: $%.2f.", ev.OrderID, ev.Total)
	case EventOrderStatusChanged:
		subject = "Order update"
		body = fmt.Sprintf("Order %s: %s.", ev.OrderID, ev.Status.Description())
	default:
		logger.FromCtx(ctx).Debug("ignoring event", zap.String("type", ev.Type))
		return
	}
	n.send(ctx, []string{ev.BuyerEmail}, subject, body)
}
