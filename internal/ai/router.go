package ai

import (
	"strings"
)

type Vendor int

const (
	VendorUnknown Vendor = iota
	VendorAnthropic
	VendorOpenAI
)

func (v Vendor) String() string {
	switch v {
	case VendorAnthropic:
		return "anthropic"
	case VendorOpenAI:
		return "openai"
	default:
		return "unknown"
	}
}

// DisplayName возвращает имя продукта вендора для текста ошибок.
func (v Vendor) DisplayName() string {
	switch v {
	case VendorAnthropic:
		return "Claude"
	case VendorOpenAI:
		return "ChatGPT"
	default:
		return ""
	}
}

// Classify определяет вендора по префиксу идентификатора модели.
// "claude*" -> Anthropic, "gpt*" и "o<цифра>*" -> OpenAI.
func Classify(model string) Vendor {
	id := strings.ToLower(strings.TrimSpace(model))

	switch {
	case strings.HasPrefix(id, "claude"):
		return VendorAnthropic
	case strings.HasPrefix(id, "gpt"), isReasoningModel(id):
		return VendorOpenAI
	default:
		return VendorUnknown
	}
}

func isReasoningModel(model string) bool {
	id := strings.ToLower(strings.TrimSpace(model))
	return len(id) >= 2 && id[0] == 'o' && id[1] >= '0' && id[1] <= '9'
}

type Router struct {
	clients map[Vendor]Client
}

// NewRouter строит таблицу диспетчеризации; nil-клиенты пропускаются.
func NewRouter(clients ...Client) *Router {
	table := make(map[Vendor]Client, len(clients))
	for _, client := range clients {
		if client == nil {
			continue
		}
		table[client.Vendor()] = client
	}
	return &Router{clients: table}
}

// Resolve выбирает адаптер для модели.
func (r *Router) Resolve(model string) (Client, Vendor, error) {
	vendor := Classify(model)
	if vendor == VendorUnknown {
		return nil, vendor, &UnsupportedModelError{Model: model}
	}

	client, ok := r.clients[vendor]
	if !ok {
		return nil, vendor, &UnsupportedModelError{Model: model, Vendor: vendor}
	}

	return client, vendor, nil
}

// Configured сообщает, зарегистрирован ли адаптер вендора.
func (r *Router) Configured(vendor Vendor) bool {
	_, ok := r.clients[vendor]
	return ok
}
