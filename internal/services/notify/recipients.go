package notify

import (
	"strings"

	"github.com/BearBump/DriverComm/internal/models"
)

const statusEnRouteToUnload = "en-route to unload"

// ResolveRecipients возвращает номера для рассылки по смене статуса (агент, мерчант,
// отправитель, получатель). Пустые выкидываются, дубли схлопываются с сохранением
// порядка первого вхождения. Когда груз едет на выгрузку, отправителю больше не пишем.
func ResolveRecipients(l *models.Load) []string {
	candidates := []string{l.AgentPhone, l.MerchantPhone, l.ShipperPhone, l.ReceiverPhone}

	dropShipper := strings.Contains(strings.ToLower(l.Status), statusEnRouteToUnload)

	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if dropShipper && p == l.ShipperPhone {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
