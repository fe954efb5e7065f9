package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"minishop/events"
	"minishop/metrics"
	"minishop/models"
	"minishop/payment"
	"minishop/store"
	"minishop/utils"
)

const expireSessionTimeout = 10 * time.Second

type OrderConfig struct {
	AppURL   string
	Currency string
	// ExpireOrphanedSessions asks the gateway to expire a checkout session
	// whose order could not be committed. Off by default, in which case the
	// session is only logged and counted.
	ExpireOrphanedSessions bool
}

// CheckoutResult is what the buyer needs to complete payment.
type CheckoutResult struct {
	CheckoutURL string        `json:"checkoutUrl"`
	Order       *models.Order `json:"order"`
}

// PaymentConfirmation reports the gateway's view of a session alongside the
// local record. Order is only set once the payment is PAID.
type PaymentConfirmation struct {
	SessionStatus string          `json:"session_status"`
	Order         *models.Order   `json:"order,omitempty"`
	Payment       *models.Payment `json:"payment"`
}

type OrderService struct {
	store     store.Store
	gateway   payment.Gateway
	products  *ProductService
	publisher events.Publisher
	mailer    *utils.EmailService
	metrics   *metrics.Metrics
	cfg       OrderConfig
	log       *slog.Logger
}

func NewOrderService(
	s store.Store,
	gateway payment.Gateway,
	products *ProductService,
	publisher events.Publisher,
	mailer *utils.EmailService,
	m *metrics.Metrics,
	cfg OrderConfig,
	log *slog.Logger,
) *OrderService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &OrderService{
		store:     s,
		gateway:   gateway,
		products:  products,
		publisher: publisher,
		mailer:    mailer,
		metrics:   m,
		cfg:       cfg,
		log:       log,
	}
}

// Checkout turns the user's cart into an order with a pending payment and
// returns the hosted checkout URL. The gateway session is created before the
// local transaction; if the transaction fails the session is left behind.
func (s *OrderService) Checkout(ctx context.Context, userID, cartID string) (*CheckoutResult, error) {
	cart, err := s.store.Carts().GetForUser(ctx, cartID, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.metrics.Checkout(metrics.CheckoutFailed)
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		s.metrics.Checkout(metrics.CheckoutEmptyCart)
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidState)
	}

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		s.metrics.Checkout(metrics.CheckoutFailed)
		return nil, fromStore(err, "user")
	}

	var amount int64
	lineItems := make([]payment.LineItem, 0, len(cart.Items))
	for i, item := range cart.Items {
		product, err := s.store.Products().GetByID(ctx, item.ProductID)
		if err != nil {
			s.metrics.Checkout(metrics.CheckoutFailed)
			return nil, fromStore(err, "product")
		}
		cart.Items[i].Product = product
		amount += product.Price * int64(item.Quantity)
		lineItems = append(lineItems, payment.LineItem{
			Name:       product.Name,
			Quantity:   int64(item.Quantity),
			UnitAmount: product.Price,
			Currency:   s.cfg.Currency,
		})
	}

	reference, err := utils.GenerateOrderReference()
	if err != nil {
		s.metrics.Checkout(metrics.CheckoutFailed)
		return nil, err
	}
	returnURL := fmt.Sprintf("%s/api/v1/orders/%s", s.cfg.AppURL, reference)

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		SuccessURL:      returnURL,
		CancelURL:       returnURL,
		CustomerEmail:   user.Email,
		ClientReference: user.PublicID,
		LineItems:       lineItems,
	})
	if err != nil {
		s.metrics.Checkout(metrics.CheckoutGatewayError)
		s.log.Error("failed to create checkout session", "user_id", userID, "reference", reference, "error", err)
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrUpstream, err)
	}

	var order *models.Order
	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		o := &models.Order{
			PublicID:  uuid.NewString(),
			UserID:    userID,
			Reference: reference,
			OrderDate: time.Now().UTC(),
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}

		for _, item := range cart.Items {
			product, err := tx.Products().GetByID(ctx, item.ProductID)
			if err != nil {
				return fromStore(err, "product")
			}
			if product.AvailableQuantity < item.Quantity {
				return fmt.Errorf("%w: only %d of %s left in stock", ErrInvalidState, product.AvailableQuantity, product.Name)
			}
			if err := tx.Orders().AddLine(ctx, &models.OrderLine{
				PublicID:  uuid.NewString(),
				OrderID:   o.PublicID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			}); err != nil {
				return err
			}
			if err := tx.Products().DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fromStore(err, "product")
			}
		}

		if err := tx.Orders().CreatePayment(ctx, &models.Payment{
			PublicID:  uuid.NewString(),
			OrderID:   o.PublicID,
			Amount:    amount,
			Status:    models.PaymentPending,
			Reference: session.ID,
		}); err != nil {
			return err
		}

		if err := tx.Carts().ClearItems(ctx, cart.PublicID); err != nil {
			return err
		}
		if err := tx.Carts().Delete(ctx, cart.PublicID); err != nil {
			return err
		}

		var err error
		order, err = tx.Orders().GetByID(ctx, o.PublicID)
		return err
	})
	if err != nil {
		s.orphanedSession(ctx, session.ID, reference, err)
		if errors.Is(err, ErrInvalidState) {
			s.metrics.Checkout(metrics.CheckoutInsufficientStock)
		} else {
			s.metrics.Checkout(metrics.CheckoutFailed)
		}
		return nil, err
	}

	productIDs := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	s.products.Invalidate(ctx, productIDs...)
	if err := s.products.attachToOrders(ctx, order); err != nil {
		s.log.Warn("failed to load order products", "reference", reference, "error", err)
	}

	s.metrics.Checkout(metrics.CheckoutSuccess)
	s.log.Info("order created", "user_id", userID, "reference", reference, "session_id", session.ID, "amount", amount)
	s.publish(ctx, events.New(events.TypeOrderCreated, reference, orderCreated(order, session.ID, amount, s.cfg.Currency)))

	return &CheckoutResult{CheckoutURL: session.URL, Order: order}, nil
}

// orphanedSession handles a gateway session whose order was rolled back.
func (s *OrderService) orphanedSession(ctx context.Context, sessionID, reference string, cause error) {
	s.metrics.OrphanedSession()
	s.log.Warn("checkout rolled back, gateway session orphaned",
		"session_id", sessionID,
		"reference", reference,
		"expire", s.cfg.ExpireOrphanedSessions,
		"error", cause,
	)
	if !s.cfg.ExpireOrphanedSessions {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), expireSessionTimeout)
	defer cancel()
	if err := s.gateway.ExpireSession(ctx, sessionID); err != nil {
		s.log.Error("failed to expire orphaned session", "session_id", sessionID, "error", err)
	}
}

// ConfirmPayment asks the gateway about a checkout session and records the
// payment as PAID once the gateway says so. Side effects run only on the call
// that performs the transition.
func (s *OrderService) ConfirmPayment(ctx context.Context, sessionID string) (*PaymentConfirmation, error) {
	p, err := s.store.Orders().GetPaymentByReference(ctx, sessionID)
	if err != nil {
		return nil, fromStore(err, "payment")
	}

	session, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		s.log.Error("failed to retrieve checkout session", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("%w: retrieve checkout session: %v", ErrUpstream, err)
	}
	if session.PaymentStatus != payment.PaymentStatusPaid {
		return &PaymentConfirmation{SessionStatus: session.PaymentStatus, Payment: p}, nil
	}

	moved, err := s.store.Orders().MarkPaymentPaid(ctx, sessionID)
	if err != nil {
		return nil, fromStore(err, "payment")
	}
	order, err := s.store.Orders().GetByID(ctx, p.OrderID)
	if err != nil {
		return nil, fromStore(err, "order")
	}
	if err := s.products.attachToOrders(ctx, order); err != nil {
		s.log.Warn("failed to load order products", "reference", order.Reference, "error", err)
	}

	if moved {
		s.metrics.PaymentConfirmed()
		s.log.Info("payment confirmed", "reference", order.Reference, "session_id", sessionID, "amount", p.Amount)
		s.publish(ctx, events.New(events.TypePaymentPaid, order.Reference, events.PaymentPaid{
			OrderID:   order.PublicID,
			Reference: order.Reference,
			PaymentID: p.PublicID,
			SessionID: sessionID,
			Amount:    p.Amount,
		}))
		s.sendConfirmation(ctx, order)
	}

	return &PaymentConfirmation{SessionStatus: session.PaymentStatus, Order: order, Payment: order.Payment}, nil
}

func (s *OrderService) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	order, err := s.store.Orders().GetByReference(ctx, reference)
	if err != nil {
		return nil, fromStore(err, "order")
	}
	if err := s.products.attachToOrders(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*models.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := s.products.attachToOrders(ctx, ptrs...); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *OrderService) sendConfirmation(ctx context.Context, order *models.Order) {
	if s.mailer == nil {
		return
	}
	user, err := s.store.Users().GetByID(ctx, order.UserID)
	if err != nil {
		s.log.Warn("order confirmation skipped", "reference", order.Reference, "error", err)
		return
	}
	if err := s.mailer.SendOrderConfirmationEmail(ctx, user.Email, order); err != nil {
		s.log.Error("failed to send order confirmation", "reference", order.Reference, "error", err)
	}
}

func (s *OrderService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Error("failed to publish event", "type", e.Type, "key", e.Key, "error", err)
	}
}

func orderCreated(o *models.Order, sessionID string, amount int64, currency string) events.OrderCreated {
	lines := make([]events.OrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, events.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return events.OrderCreated{
		OrderID:   o.PublicID,
		Reference: o.Reference,
		UserID:    o.UserID,
		SessionID: sessionID,
		Amount:    amount,
		Currency:  currency,
		Lines:     lines,
	}
}
