package dialog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"flowershop/internal/metrics"
	"flowershop/internal/models"
	"flowershop/internal/store"
)

// EventType classifies inbound events from the message channel.
type EventType string

const (
	EventCommand EventType = "command"
	EventButton  EventType = "button"
	EventText    EventType = "text"
)

// Event is one inbound user action. Payload holds the command name,
// the callback data or the message text depending on Type.
type Event struct {
	Type     EventType
	Payload  string
	UserID   int64
	ChatID   int64
	Username string
}

// Button is one inline keyboard button with opaque callback data.
type Button struct {
	Text string
	Data string
}

// Catalog is the bouquet inventory.
type Catalog interface {
	BouquetsByOccasion(ctx context.Context, occasion string) ([]models.Bouquet, error)
	BouquetsByOccasionAndMaxPrice(ctx context.Context, occasion string, maxPrice int) ([]models.Bouquet, error)
	BouquetByID(ctx context.Context, id int64) (*models.Bouquet, error)
	ListBouquets(ctx context.Context) ([]models.Bouquet, error)
}

// Customers is the customer registry keyed by Telegram user id.
type Customers interface {
	GetOrCreateCustomer(ctx context.Context, telegramID int64) (*models.Customer, error)
	UpdateCustomerName(ctx context.Context, telegramID int64, name string) error
	UpdateCustomerPhone(ctx context.Context, telegramID int64, phone string) error
	UpdateCustomerAddress(ctx context.Context, telegramID int64, address string) error
}

// Orders persists completed orders and consultation requests.
// CreateOrder writes the order and its usage statistics atomically.
type Orders interface {
	CreateOrder(ctx context.Context, order *models.Order) (int64, error)
	CreateConsultation(ctx context.Context, telegramID int64, phone string) error
}

// DateParser turns free-form delivery time text into a timestamp.
type DateParser interface {
	Parse(text string) (time.Time, bool)
}

// ImageResolver maps a bouquet image reference to a local file path.
// The second return is false when the referenced file does not exist.
type ImageResolver interface {
	Resolve(ref string) (string, bool)
}

// Messenger delivers outbound messages to the user.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, keyboard [][]Button) error
	SendPhoto(ctx context.Context, chatID int64, path, caption string, keyboard [][]Button) error
}

type handlerFunc func(ctx context.Context, s *Session, payload string) error

// buttonRoute binds a callback pattern to a handler. Exact routes are listed
// before prefix routes so "occasion:other" wins over the "occasion:" prefix.
type buttonRoute struct {
	pattern string
	prefix  bool
	handler handlerFunc
}

// Machine dispatches inbound events against an explicit table keyed by
// callback pattern and current state. Button routes are evaluated first,
// in declaration order; then the text handler bound to the session state.
// Events with no binding are ignored.
type Machine struct {
	catalog   Catalog
	customers Customers
	orders    Orders
	dates     DateParser
	images    ImageResolver
	msg       Messenger
	sessions  *SessionStore

	buttonRoutes []buttonRoute
	textRoutes   map[State]handlerFunc
}

// NewMachine wires the collaborators and builds the dispatch tables.
func NewMachine(
	catalog Catalog,
	customers Customers,
	orders Orders,
	dates DateParser,
	images ImageResolver,
	msg Messenger,
	sessions *SessionStore,
) *Machine {
	m := &Machine{
		catalog:   catalog,
		customers: customers,
		orders:    orders,
		dates:     dates,
		images:    images,
		msg:       msg,
		sessions:  sessions,
	}

	m.buttonRoutes = []buttonRoute{
		{pattern: cbOccasionOther, handler: m.handleOtherOccasion},
		{pattern: cbConsultation, handler: m.handleConsultation},
		{pattern: cbCollection, handler: m.handleCollection},
		{pattern: prefixOccasion, prefix: true, handler: m.handleOccasion},
		{pattern: prefixPrice, prefix: true, handler: m.handlePrice},
		{pattern: prefixBouquet, prefix: true, handler: m.handleBouquet},
		{pattern: prefixOrder, prefix: true, handler: m.handleStartOrder},
	}

	m.textRoutes = map[State]handlerFunc{
		StateWaitingCustomOccasion:    m.handleCustomOccasionText,
		StateWaitingConsultationPhone: m.handleConsultationPhoneText,
		StateWaitingOrderName:         m.handleOrderNameText,
		StateWaitingOrderAddress:      m.handleOrderAddressText,
		StateWaitingOrderDeliveryTime: m.handleOrderDeliveryTimeText,
		StateWaitingOrderPhone:        m.handleOrderPhoneText,
	}

	return m
}

// Sessions exposes the session store for lifecycle management.
func (m *Machine) Sessions() *SessionStore {
	return m.sessions
}

// Handle processes one inbound event to completion. Every foreseeable
// failure is mapped to a user-visible message; the returned error exists
// for logging only and never reflects user mistakes.
func (m *Machine) Handle(ctx context.Context, ev Event) error {
	session := m.sessions.GetOrCreate(ev.UserID, ev.ChatID)

	var err error
	switch ev.Type {
	case EventCommand:
		err = m.handleCommand(ctx, session, ev)
	case EventButton:
		err = m.handleButton(ctx, session, ev.Payload)
	case EventText:
		err = m.handleText(ctx, session, ev.Payload)
	}

	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Int64("user_id", ev.UserID).
			Str("state", string(session.State)).
			Msg("dialog event failed")
		_ = m.msg.SendText(ctx, session.ChatID, msgServiceFailure, nil)
	}
	return err
}

func (m *Machine) handleCommand(ctx context.Context, s *Session, ev Event) error {
	cmd := strings.TrimSpace(ev.Payload)
	if i := strings.IndexAny(cmd, " @"); i > 0 {
		cmd = cmd[:i]
	}
	switch strings.TrimPrefix(cmd, "/") {
	case "start":
		s.clear()
		name := ev.Username
		if name == "" {
			name = "друг"
		}
		return m.msg.SendText(ctx, s.ChatID, greeting(name), occasionKeyboard)
	default:
		// Unknown commands are no-ops, same as unbound events.
		return nil
	}
}

func (m *Machine) handleButton(ctx context.Context, s *Session, data string) error {
	for _, r := range m.buttonRoutes {
		if r.prefix && strings.HasPrefix(data, r.pattern) {
			return r.handler(ctx, s, strings.TrimPrefix(data, r.pattern))
		}
		if !r.prefix && data == r.pattern {
			return r.handler(ctx, s, "")
		}
	}
	return nil
}

func (m *Machine) handleText(ctx context.Context, s *Session, text string) error {
	h, ok := m.textRoutes[s.State]
	if !ok {
		// Free text in a button-only state is ignored.
		return nil
	}
	return h(ctx, s, strings.TrimSpace(text))
}

// --- button handlers ---

func (m *Machine) handleOtherOccasion(ctx context.Context, s *Session, _ string) error {
	s.setState(StateWaitingCustomOccasion)
	return m.msg.SendText(ctx, s.ChatID, msgAskCustomOccasion, nil)
}

func (m *Machine) handleConsultation(ctx context.Context, s *Session, _ string) error {
	s.setState(StateWaitingConsultationPhone)
	return m.msg.SendText(ctx, s.ChatID, msgAskConsultPhone, nil)
}

func (m *Machine) handleCollection(ctx context.Context, s *Session, _ string) error {
	bouquets, err := m.catalog.ListBouquets(ctx)
	if err != nil {
		return err
	}
	if len(bouquets) == 0 {
		metrics.IncEmptyCatalogResult("collection")
		return m.msg.SendText(ctx, s.ChatID, msgNoBouquetsAtAll, nil)
	}
	return m.sendBouquetCards(ctx, s.ChatID, bouquets)
}

func (m *Machine) handleOccasion(ctx context.Context, s *Session, occasion string) error {
	bouquets, err := m.catalog.BouquetsByOccasion(ctx, occasion)
	if err != nil {
		return err
	}
	if len(bouquets) == 0 {
		metrics.IncEmptyCatalogResult("occasion")
		return m.msg.SendText(ctx, s.ChatID, msgNoBouquetsForOccasion, nil)
	}

	s.Draft.Occasion = occasion
	s.setState(StateWaitingPriceSelection)
	return m.msg.SendText(ctx, s.ChatID, msgAskPrice, priceKeyboard)
}

func (m *Machine) handlePrice(ctx context.Context, s *Session, tier string) error {
	maxPrice, err := strconv.Atoi(tier)
	if err != nil || maxPrice <= 0 {
		return nil // malformed callback, ignore
	}
	s.Draft.MaxPrice = maxPrice

	bouquets, err := m.catalog.BouquetsByOccasionAndMaxPrice(ctx, s.Draft.Occasion, maxPrice)
	if err != nil {
		return err
	}
	if len(bouquets) == 0 {
		metrics.IncEmptyCatalogResult("price")
		return m.msg.SendText(ctx, s.ChatID, noBouquetsInRange(s.Draft.Occasion), nil)
	}
	return m.sendBouquetCards(ctx, s.ChatID, bouquets)
}

func (m *Machine) handleBouquet(ctx context.Context, s *Session, idStr string) error {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil
	}
	bouquet, err := m.catalog.BouquetByID(ctx, id)
	if errors.Is(err, store.ErrBouquetNotFound) {
		return m.msg.SendText(ctx, s.ChatID, msgBouquetGone, nil)
	}
	if err != nil {
		return err
	}

	keyboard := [][]Button{
		{{Text: "🛒 Оформить заказ", Data: prefixOrder + idStr}},
		{{Text: "🌸 Заказать консультацию", Data: cbConsultation}},
		{{Text: "📚 Посмотреть всю коллекцию", Data: cbCollection}},
	}
	return m.msg.SendText(ctx, s.ChatID, bouquetChosen(bouquet.Name, bouquet.Price), keyboard)
}

func (m *Machine) handleStartOrder(ctx context.Context, s *Session, idStr string) error {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil
	}
	bouquet, err := m.catalog.BouquetByID(ctx, id)
	if errors.Is(err, store.ErrBouquetNotFound) {
		return m.msg.SendText(ctx, s.ChatID, msgBouquetGone, nil)
	}
	if err != nil {
		return err
	}

	customer, err := m.customers.GetOrCreateCustomer(ctx, s.UserID)
	if err != nil {
		return err
	}

	s.Draft.CustomerID = customer.ID
	s.Draft.BouquetID = bouquet.ID
	s.setState(StateWaitingOrderName)
	return m.msg.SendText(ctx, s.ChatID, msgAskName, nil)
}

// --- state-bound text handlers ---

func (m *Machine) handleCustomOccasionText(ctx context.Context, s *Session, text string) error {
	metrics.IncCustomOccasion()
	reply := customOccasionAccepted(text)
	s.clear()
	return m.msg.SendText(ctx, s.ChatID, reply, helpKeyboard)
}

func (m *Machine) handleConsultationPhoneText(ctx context.Context, s *Session, phone string) error {
	if err := m.orders.CreateConsultation(ctx, s.UserID, phone); err != nil {
		return err
	}
	metrics.IncConsultationRequest()
	s.clear()
	return m.msg.SendText(ctx, s.ChatID, consultPhoneAccepted(phone), nil)
}

func (m *Machine) handleOrderNameText(ctx context.Context, s *Session, name string) error {
	if err := m.customers.UpdateCustomerName(ctx, s.UserID, name); err != nil {
		return err
	}
	s.setState(StateWaitingOrderAddress)
	return m.msg.SendText(ctx, s.ChatID, msgAskAddress, nil)
}

func (m *Machine) handleOrderAddressText(ctx context.Context, s *Session, address string) error {
	s.Draft.Address = address
	s.setState(StateWaitingOrderDeliveryTime)
	return m.msg.SendText(ctx, s.ChatID, msgAskDeliveryTime, nil)
}

func (m *Machine) handleOrderDeliveryTimeText(ctx context.Context, s *Session, text string) error {
	deliveryTime, ok := m.dates.Parse(text)
	if !ok {
		// Self-loop: stay in this state and re-prompt, store nothing.
		return m.msg.SendText(ctx, s.ChatID, msgBadDeliveryTime, nil)
	}
	s.Draft.DeliveryTime = deliveryTime
	s.setState(StateWaitingOrderPhone)
	return m.msg.SendText(ctx, s.ChatID, msgAskOrderPhone, nil)
}

func (m *Machine) handleOrderPhoneText(ctx context.Context, s *Session, phone string) error {
	if !s.Draft.Complete() {
		// Should not happen along declared edges; restart rather than
		// create an order from a partial draft.
		s.clear()
		return m.msg.SendText(ctx, s.ChatID, msgServiceFailure, nil)
	}

	if err := m.customers.UpdateCustomerPhone(ctx, s.UserID, phone); err != nil {
		return err
	}
	// The customer record keeps the last delivery address for the next order.
	if err := m.customers.UpdateCustomerAddress(ctx, s.UserID, s.Draft.Address); err != nil {
		return err
	}

	bouquet, err := m.catalog.BouquetByID(ctx, s.Draft.BouquetID)
	if err != nil {
		return err
	}

	order := &models.Order{
		CustomerID:   s.Draft.CustomerID,
		BouquetID:    s.Draft.BouquetID,
		Address:      s.Draft.Address,
		DeliveryTime: s.Draft.DeliveryTime,
		Status:       models.OrderStatusNew,
	}
	if _, err := m.orders.CreateOrder(ctx, order); err != nil {
		return err
	}
	metrics.IncOrderCreated()

	confirmation := orderConfirmation(
		bouquet.Name,
		s.Draft.Address,
		s.Draft.DeliveryTime.Format("2006-01-02 15:04"),
		phone,
	)
	s.clear()
	return m.msg.SendText(ctx, s.ChatID, confirmation, nil)
}

// sendBouquetCards renders a listing with the shared card rule: photo with
// caption when the image resolves, plain text when there is none, and an
// explicit notice when the reference points at a missing file. Each card
// carries exactly one select button.
func (m *Machine) sendBouquetCards(ctx context.Context, chatID int64, bouquets []models.Bouquet) error {
	for i := range bouquets {
		b := &bouquets[i]
		card := bouquetCard(b.Name, b.Description, b.Price)
		keyboard := [][]Button{
			{{Text: msgSelectBouquet, Data: prefixBouquet + strconv.FormatInt(b.ID, 10)}},
		}

		var err error
		switch {
		case b.Image == "":
			err = m.msg.SendText(ctx, chatID, card, keyboard)
		default:
			if path, ok := m.images.Resolve(b.Image); ok {
				err = m.msg.SendPhoto(ctx, chatID, path, card, keyboard)
			} else {
				err = m.msg.SendText(ctx, chatID, imageMissing(b.Name), nil)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
