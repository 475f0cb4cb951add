package dialog

import "fmt"

// Callback data prefixes. Button handlers are matched against these in the
// order listed in buttonRoutes, before any state-bound text handler runs.
const (
	cbOccasionOther  = "occasion:other"
	cbConsultation   = "consultation"
	cbCollection     = "collection"
	prefixOccasion   = "occasion:"
	prefixPrice      = "price:"
	prefixBouquet    = "bouquet:"
	prefixOrder      = "order:"
)

// noPriceLimit is the ceiling used for the "any budget" tier.
const noPriceLimit = 1_000_000

var occasionKeyboard = [][]Button{
	{{Text: "🎂 День рождения", Data: prefixOccasion + "birthday"}},
	{{Text: "💍 Свадьба", Data: prefixOccasion + "wedding"}},
	{{Text: "🎓 Школа", Data: prefixOccasion + "school"}},
	{{Text: "🌸 Без повода", Data: prefixOccasion + "no_reason"}},
	{{Text: "✍️ Другой повод", Data: cbOccasionOther}},
}

var priceKeyboard = [][]Button{
	{{Text: "~500 руб.", Data: prefixPrice + "500"}, {Text: "~1000 руб.", Data: prefixPrice + "1000"}},
	{{Text: "~2000 руб.", Data: prefixPrice + "2000"}, {Text: "Больше", Data: prefixPrice + "5000"}},
	{{Text: "Не важно", Data: fmt.Sprintf("%s%d", prefixPrice, noPriceLimit)}},
}

var helpKeyboard = [][]Button{
	{{Text: "🌸 Заказать консультацию", Data: cbConsultation}},
	{{Text: "📚 Посмотреть всю коллекцию", Data: cbCollection}},
}

const (
	msgAskCustomOccasion = "Введите ваш повод:"
	msgAskConsultPhone   = "Пожалуйста, введите ваш номер телефона и наш администратор свяжется с вами в течение 20 минут"
	msgAskPrice          = "На какую сумму рассчитываете?"
	msgAskName           = "Введите ваше имя:"
	msgAskAddress        = "Спасибо! Теперь введите ваш адрес для доставки:"
	msgAskDeliveryTime   = "Спасибо! Теперь введите дату и время доставки (в формате YYYY-MM-DD HH:MM):"
	msgBadDeliveryTime   = "Вы некорректно ввели данные. Пожалуйста, введите дату и время доставки (в формате YYYY-MM-DD HH:MM)"
	msgAskOrderPhone     = "Спасибо! Теперь введите ваш номер телефона:"

	msgNoBouquetsForOccasion = "К сожалению, у нас пока нет букетов для этого случая 😔"
	msgNoBouquetsAtAll       = "К сожалению, пока нет доступных букетов 😔"
	msgBouquetGone           = "Этот букет больше недоступен 😔"
	msgServiceFailure        = "Что-то пошло не так 😔 Попробуйте ещё раз чуть позже."
	msgSelectBouquet         = "✅ Выбрать этот букет"
)

func greeting(name string) string {
	return fmt.Sprintf("Привет, %s 🙋‍♀️! FlowerShop приветствует тебя. К какому событию готовимся? Выберите один из вариантов, либо укажите свой", name)
}

func customOccasionAccepted(occasion string) string {
	return fmt.Sprintf("Спасибо! Вы указали повод: *%s* 💐", occasion)
}

func consultPhoneAccepted(phone string) string {
	return fmt.Sprintf("Спасибо! Ваш номер %s принят. Ожидайте звонка от администратора.", phone)
}

func noBouquetsInRange(occasion string) string {
	return fmt.Sprintf("К сожалению, нет букетов для повода %s в этом диапазоне 😔", occasion)
}

func bouquetCard(name, description string, price int) string {
	return fmt.Sprintf("🌸 *%s*\n%s\n💰 Цена: %d руб.", name, description, price)
}

func bouquetChosen(name string, price int) string {
	return fmt.Sprintf("🎉 Вы выбрали букет *%s*! 💐\n💰 Цена: %d руб.", name, price)
}

func imageMissing(name string) string {
	return fmt.Sprintf("Изображение для букета %s не найдено!", name)
}

func orderConfirmation(bouquet, address, deliveryTime, phone string) string {
	return fmt.Sprintf("✅ Ваш заказ оформлен!\n💐 Букет: %s\n📦 Адрес: %s\n🕒 Время доставки: %s\n📱 Телефон: %s",
		bouquet, address, deliveryTime, phone)
}
