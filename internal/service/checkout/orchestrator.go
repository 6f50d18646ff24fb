package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"veggi-storefront/internal/backend"
	"veggi-storefront/internal/domain"
	"veggi-storefront/internal/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Messages for failures outside form validation.
const (
	MsgOrderFailed        = "Failed to create order"
	MsgPaymentSetup       = "Payment setup failed. Please contact support."
	MsgWidgetUnavailable  = "Payment SDK not loaded. Please refresh the page."
	MsgPaymentFailed      = "Payment failed. Please try again."
	MsgConfirmationFailed = "Payment received but the order could not be updated. Please contact support."
)

type Method string

const (
	MethodCOD  Method = "cod"
	MethodCard Method = "card"
)

func (m Method) Valid() bool {
	return m == MethodCOD || m == MethodCard
}

type Backend interface {
	CreateOrder(ctx context.Context, token string, in domain.OrderSubmission) (*domain.Order, error)
	PaymentHash(ctx context.Context, token string, in backend.HashRequest) (*backend.HashResponse, error)
	ConfirmPayment(ctx context.Context, token, orderID string, in domain.PaymentConfirmation) error
}

type Cart interface {
	Items() []domain.CartLineItem
	Clear(ctx context.Context)
}

type WidgetLoader interface {
	Load(ctx context.Context) (payment.Widget, error)
}

type Options struct {
	// ShippingFee is the flat delivery charge. Nil means DefaultShippingFee;
	// a zero fee is free shipping.
	ShippingFee *decimal.Decimal
	Currency    string
	Sandbox     bool
	// PublicOrigin is the storefront origin used for gateway return URLs.
	PublicOrigin string
	// NotifyBase prefixes the gateway's server-to-server notify URL.
	NotifyBase string
	Publisher  Publisher
	Recorder   Recorder
	Logger     *zap.Logger
}

// Request is one press of the place-order button.
type Request struct {
	Shipping domain.ShippingInfo
	Method   Method
	User     *domain.User
	Token    string
}

// Outcome is what the shopper sees after a step of the flow.
type Outcome struct {
	State    State           `json:"state"`
	Method   Method          `json:"paymentMethod,omitempty"`
	OrderID  string          `json:"orderId,omitempty"`
	Message  string          `json:"message,omitempty"`
	Redirect string          `json:"redirect,omitempty"`
	Payment  *payment.Config `json:"payment,omitempty"`
	Totals   *Totals         `json:"totals,omitempty"`
}

// Orchestrator drives one shopper's checkout. It owns a single state value;
// every change goes through the transition table.
type Orchestrator struct {
	mu      sync.Mutex
	state   State
	last    Outcome
	cart    Cart
	backend Backend
	loader  WidgetLoader
	opts    Options
	logger  *zap.Logger
}

func New(cart Cart, be Backend, loader WidgetLoader, opts Options) *Orchestrator {
	if opts.ShippingFee == nil {
		fee := DefaultShippingFee
		opts.ShippingFee = &fee
	}
	if opts.Currency == "" {
		opts.Currency = "LKR"
	}
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		state:   StateIdle,
		last:    Outcome{State: StateIdle},
		cart:    cart,
		backend: be,
		loader:  loader,
		opts:    opts,
		logger:  logger,
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Last returns the most recent outcome.
func (o *Orchestrator) Last() Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Totals previews what the current cart would be charged.
func (o *Orchestrator) Totals() Totals {
	return ComputeTotals(o.cart.Items(), *o.opts.ShippingFee)
}

// Submit validates the form and starts the payment path chosen by the
// shopper. Backend failures are reported in the Outcome; the returned error
// is reserved for validation problems, ErrInFlight and ErrIllegalTransition.
//
// Requests to the backend run on a context detached from ctx's
// cancellation: once issued they finish even if the shopper goes away.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (Outcome, error) {
	if err := o.begin(); err != nil {
		return Outcome{}, err
	}

	if req.Method == "" {
		req.Method = MethodCOD
	}
	items := o.cart.Items()
	err := Validate(len(items), req.Shipping, req.User)
	if err == nil && !req.Method.Valid() {
		err = &ValidationError{Message: MsgInvalidMethod}
	}
	if err != nil {
		if terr := o.transition(StateIdle); terr != nil {
			return Outcome{}, terr
		}
		var verr *ValidationError
		errors.As(err, &verr)
		out := Outcome{State: StateIdle, Method: req.Method, Message: verr.Message, Redirect: verr.Redirect}
		o.record(out)
		return out, err
	}

	totals := ComputeTotals(items, *o.opts.ShippingFee)
	sub := domain.OrderSubmission{
		OrderItems:    orderItems(items),
		ShippingInfo:  req.Shipping,
		ItemsPrice:    totals.ItemsPrice,
		TaxPrice:      totals.TaxPrice,
		ShippingPrice: totals.ShippingPrice,
		TotalPrice:    totals.TotalPrice,
	}
	if err := o.transition(StateSubmitting); err != nil {
		return Outcome{}, err
	}

	netCtx := context.WithoutCancel(ctx)
	if req.Method == MethodCOD {
		return o.submitCashOnDelivery(netCtx, req, sub, totals)
	}
	return o.submitHosted(netCtx, req, items, sub, totals)
}

func (o *Orchestrator) submitCashOnDelivery(ctx context.Context, req Request, sub domain.OrderSubmission, totals Totals) (Outcome, error) {
	sub.PaymentInfo = domain.PaymentInfo{ID: domain.PaymentIDCashOnDelivery, Status: domain.PaymentStatusPending}
	order, err := o.backend.CreateOrder(ctx, req.Token, sub)
	if err != nil {
		o.logger.Error("create order failed", zap.String("method", string(MethodCOD)), zap.Error(err))
		return o.fail(req.Method, "", userMessage(err), &totals)
	}

	o.cart.Clear(ctx)
	if err := o.transition(StateCompleted); err != nil {
		return Outcome{}, err
	}
	out := Outcome{
		State:    StateCompleted,
		Method:   MethodCOD,
		OrderID:  order.ID,
		Redirect: "/order/" + order.ID,
		Totals:   &totals,
	}
	o.record(out)
	o.publish(ctx, EventCompleted, MethodCOD, order.ID, req.User.ID, totals.TotalPrice)
	return out, nil
}

func (o *Orchestrator) submitHosted(ctx context.Context, req Request, items []domain.CartLineItem, sub domain.OrderSubmission, totals Totals) (Outcome, error) {
	sub.PaymentInfo = domain.PaymentInfo{ID: domain.PaymentIDPending, Status: domain.PaymentStatusPending}
	order, err := o.backend.CreateOrder(ctx, req.Token, sub)
	if err != nil {
		o.logger.Error("create order failed", zap.String("method", string(MethodCard)), zap.Error(err))
		return o.fail(req.Method, "", userMessage(err), &totals)
	}
	orderID := order.ID

	if err := o.transition(StateAwaitingHash); err != nil {
		return Outcome{}, err
	}
	hash, err := o.backend.PaymentHash(ctx, req.Token, backend.HashRequest{
		Amount:     totals.TotalPrice,
		UserID:     req.User.ID,
		OrderItems: sub.OrderItems,
	})
	if err != nil {
		o.logger.Error("payment hash failed", zap.String("order_id", orderID), zap.Error(err))
		return o.fail(req.Method, orderID, userMessage(err), &totals)
	}

	widget, err := o.loader.Load(ctx)
	if err != nil {
		o.logger.Error("payment widget unavailable", zap.Error(err))
		return o.fail(req.Method, orderID, MsgWidgetUnavailable, &totals)
	}

	cfg := o.widgetConfig(orderID, hash, items, totals, req)
	token, userID := req.Token, req.User.ID
	widget.OnCompleted(func(c payment.Completion) {
		o.gatewayCompleted(ctx, token, userID, orderID, c, totals)
	})
	widget.OnDismissed(func() {
		o.gatewayDismissed(ctx, userID, orderID, totals)
	})
	widget.OnError(func(err error) {
		o.gatewayFailed(orderID, err, totals)
	})

	if err := o.transition(StateAwaitingGatewayResult); err != nil {
		return Outcome{}, err
	}
	out := Outcome{
		State:   StateAwaitingGatewayResult,
		Method:  MethodCard,
		OrderID: orderID,
		Payment: &cfg,
		Totals:  &totals,
	}
	o.record(out)
	if err := widget.StartPayment(ctx, cfg); err != nil {
		o.logger.Error("start payment failed", zap.String("order_id", orderID), zap.Error(err))
		return o.fail(req.Method, orderID, userMessage(err), &totals)
	}
	return out, nil
}

func (o *Orchestrator) gatewayCompleted(ctx context.Context, token, userID, orderID string, c payment.Completion, totals Totals) {
	if err := o.transition(StateConfirming); err != nil {
		o.logger.Error("ignoring payment completion", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	err := o.backend.ConfirmPayment(ctx, token, orderID, domain.PaymentConfirmation{
		Status:    domain.PaymentStatusPaid,
		PaymentID: c.PaymentID,
	})
	if err != nil {
		o.logger.Error("payment confirmation failed",
			zap.String("order_id", orderID),
			zap.String("payment_id", c.PaymentID),
			zap.Error(err),
		)
		_, _ = o.fail(MethodCard, orderID, MsgConfirmationFailed, &totals)
		return
	}

	o.cart.Clear(ctx)
	if err := o.transition(StateCompleted); err != nil {
		o.logger.Error("completing checkout", zap.Error(err))
		return
	}
	o.record(Outcome{
		State:    StateCompleted,
		Method:   MethodCard,
		OrderID:  orderID,
		Redirect: "/order/" + orderID,
		Totals:   &totals,
	})
	o.publish(ctx, EventCompleted, MethodCard, orderID, userID, totals.TotalPrice)
}

// gatewayDismissed leaves the cart and the pending order as they are.
func (o *Orchestrator) gatewayDismissed(ctx context.Context, userID, orderID string, totals Totals) {
	if err := o.transition(StateAbandoned); err != nil {
		o.logger.Error("ignoring payment dismissal", zap.String("order_id", orderID), zap.Error(err))
		return
	}
	o.logger.Info("payment dismissed", zap.String("order_id", orderID))
	o.record(Outcome{
		State:    StateAbandoned,
		Method:   MethodCard,
		OrderID:  orderID,
		Redirect: "/cart",
		Totals:   &totals,
	})
	o.publish(ctx, EventAbandoned, MethodCard, orderID, userID, totals.TotalPrice)
}

func (o *Orchestrator) gatewayFailed(orderID string, err error, totals Totals) {
	msg := MsgPaymentFailed
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	o.logger.Warn("payment error", zap.String("order_id", orderID), zap.String("error", msg))
	if _, ferr := o.fail(MethodCard, orderID, msg, &totals); ferr != nil {
		o.logger.Error("ignoring payment error", zap.String("order_id", orderID), zap.Error(ferr))
	}
}

// fail records a Failed outcome and hands the form back to the shopper.
func (o *Orchestrator) fail(method Method, orderID, message string, totals *Totals) (Outcome, error) {
	if err := o.transition(StateFailed); err != nil {
		return Outcome{}, err
	}
	out := Outcome{State: StateFailed, Method: method, OrderID: orderID, Message: message, Totals: totals}
	o.record(out)
	if err := o.transition(StateIdle); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// begin claims the orchestrator for a new attempt.
func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.InFlight() {
		return ErrInFlight
	}
	if o.state.IsTerminal() {
		if err := o.transitionLocked(StateIdle); err != nil {
			return err
		}
	}
	return o.transitionLocked(StateValidating)
}

func (o *Orchestrator) transition(next State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transitionLocked(next)
}

func (o *Orchestrator) transitionLocked(next State) error {
	if !o.state.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.state, next)
	}
	o.logger.Debug("checkout transition", zap.Stringer("from", o.state), zap.Stringer("to", next))
	o.state = next
	return nil
}

func (o *Orchestrator) record(out Outcome) {
	o.mu.Lock()
	o.last = out
	o.mu.Unlock()
	if out.State.IsTerminal() {
		o.opts.Recorder.CheckoutOutcome(string(out.Method), string(out.State))
	}
}

func (o *Orchestrator) publish(ctx context.Context, typ string, method Method, orderID, userID string, amount decimal.Decimal) {
	ev := Event{
		Type:       typ,
		OrderID:    orderID,
		UserID:     userID,
		Method:     method,
		Amount:     amount,
		Currency:   o.opts.Currency,
		OccurredAt: time.Now().UTC(),
	}
	if err := o.opts.Publisher.Publish(ctx, orderID, ev); err != nil {
		o.logger.Warn("publish checkout event failed", zap.String("type", typ), zap.String("order_id", orderID), zap.Error(err))
	}
}

func (o *Orchestrator) widgetConfig(orderID string, hash *backend.HashResponse, items []domain.CartLineItem, totals Totals, req Request) payment.Config {
	gatewayOrderID := hash.OrderID
	if gatewayOrderID == "" {
		gatewayOrderID = orderID
	}
	origin := strings.TrimRight(o.opts.PublicOrigin, "/")
	return payment.Config{
		Sandbox:    o.opts.Sandbox,
		MerchantID: hash.MerchantID,
		ReturnURL:  origin + "/order/" + orderID + "?status=success",
		CancelURL:  origin + "/order/" + orderID + "?status=cancel",
		NotifyURL:  strings.TrimRight(o.opts.NotifyBase, "/") + "/payments/notify",
		OrderID:    gatewayOrderID,
		Items:      itemSummary(items),
		Currency:   o.opts.Currency,
		Amount:     totals.Amount(),
		Hash:       hash.Hash,
		FirstName:  req.User.FirstName(),
		LastName:   req.User.LastName(),
		Email:      req.User.Email,
		Phone:      req.Shipping.PhoneNo,
		Address:    req.Shipping.Address,
		City:       req.Shipping.City,
		Country:    req.Shipping.Country,
	}
}

// userMessage turns a backend failure into text for the shopper. Anything
// mentioning the payment hash is reported as a setup problem.
func userMessage(err error) string {
	msg := ""
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	if msg == "" && err != nil {
		msg = err.Error()
	}
	if msg == "" {
		return MsgOrderFailed
	}
	if strings.Contains(msg, "hash") {
		return MsgPaymentSetup
	}
	return msg
}
