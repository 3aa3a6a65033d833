package main

import (
	"fmt"
	"time"

	"github.com/BertoldVdb/mt-tools/mthal"
	"github.com/spf13/viper"
)

type linkConfig struct {
	hal    mthal.Config
	settle time.Duration
}

const defaultSettleDelay = 50 * time.Millisecond

/* loadLinkConfig starts from the library defaults and applies whatever the
 * optional config file sets. Keys use the same names as the YAML below:
 *
 *   handshake_attempts: 2000
 *   handshake_timeout: 5ms
 *   read_timeout: 1s
 *   mtu: 256
 */
func loadLinkConfig(filename string) (linkConfig, error) {
	link := linkConfig{
		hal:    mthal.DefaultConfig(),
		settle: defaultSettleDelay,
	}
	if filename == "" {
		return link, nil
	}

	v := viper.New()
	v.SetConfigFile(filename)
	if err := v.ReadInConfig(); err != nil {
		return link, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	durations := map[string]*time.Duration{
		"entry_delay":        &link.hal.EntryDelay,
		"handshake_timeout":  &link.hal.HandshakeTimeout,
		"read_timeout":       &link.hal.ReadTimeout,
		"agent_boot_timeout": &link.hal.AgentBootTimeout,
		"erase_timeout":      &link.hal.EraseTimeout,
		"settle_delay":       &link.settle,
	}
	for key, target := range durations {
		if v.IsSet(key) {
			*target = v.GetDuration(key)
		}
	}

	ints := map[string]*int{
		"handshake_attempts": &link.hal.HandshakeAttempts,
		"frame_retries":      &link.hal.FrameRetries,
		"read_retries":       &link.hal.ReadRetries,
		"mtu":                &link.hal.MTU,
		"sector_size":        &link.hal.SectorSize,
		"flash_size":         &link.hal.FlashSize,
	}
	for key, target := range ints {
		if v.IsSet(key) {
			*target = v.GetInt(key)
		}
	}

	if v.IsSet("explicit_erase") {
		link.hal.ExplicitErase = v.GetBool("explicit_erase")
	}

	if link.hal.MTU <= 0 || link.hal.MTU%4 != 0 {
		return link, fmt.Errorf("mtu %d must be a positive multiple of 4", link.hal.MTU)
	}
	if link.hal.SectorSize <= 0 || link.hal.SectorSize%link.hal.MTU != 0 {
		return link, fmt.Errorf("sector_size %d must be a multiple of the mtu", link.hal.SectorSize)
	}

	return link, nil
}
