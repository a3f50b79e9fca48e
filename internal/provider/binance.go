package provider

import (
	"lean-data/internal/provider/binance"
	"lean-data/internal/saver"
)

// BinanceProvider is a DataProvider implementation backed by the Binance
// public archive and REST API. It embeds *binance.Client to expose the
// fetch methods with minimal boilerplate.
type BinanceProvider struct {
	*binance.Client
}

// NewBinanceProvider creates a Binance-backed DataProvider for the given
// account type (spot when useFutures is false, USDT futures otherwise).
func NewBinanceProvider(useFutures bool) *BinanceProvider {
	return &BinanceProvider{Client: binance.NewClient(useFutures)}
}

// GetName returns the provider name.
func (p *BinanceProvider) GetName() string {
	return "Binance"
}

// SetRawPacketDir sets the directory for raw packet dumps (one file per
// symbol/interval reconciliation). File extension depends on the PacketSaver.
func (p *BinanceProvider) SetRawPacketDir(dir string) {
	if p.Client != nil {
		p.Client.SavePacketDir = dir
	}
}

// SetPacketSaver injects the packet save implementation. Call after
// SetRawPacketDir; a nil saver disables the dump.
func (p *BinanceProvider) SetPacketSaver(s saver.PacketSaver) {
	if p.Client != nil {
		p.Client.PacketSaver = s
	}
}
