package damping_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/dachinzo/ringpop-node/damping"
)

var _ = Describe("Config", func() {
	It("accepts the shipped defaults", func() {
		Expect(damping.DefaultConfig().Validate()).NotTo(HaveOccurred())
	})

	It("collects every violated constraint instead of stopping at the first", func() {
		cfg := damping.DefaultConfig()
		cfg.NVal = 0
		cfg.MaxPercentage = 2

		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("damp_req_n_val"))
		Expect(err.Error()).To(ContainSubstring("damped_max_percentage"))
	})

	It("loads from a viper source under a key prefix", func() {
		v := viper.New()
		v.SetConfigType("yaml")
		yml := []byte(`
damping:
  damp_req_n_val: 5
  damp_req_r_val: 4
  damp_scoring_suppress_limit: 90
  damp_scoring_suppress_duration: 10m
  damped_member_expiration_interval: 2s
  damp_timer_interval: 500ms
  damped_max_percentage: 0.25
`)
		Expect(v.ReadConfig(bytes.NewReader(yml))).To(Succeed())

		cfg, err := damping.LoadConfig(v, "damping")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.NVal).To(Equal(5))
		Expect(cfg.RVal).To(Equal(4))
		Expect(cfg.MaxPercentage).To(BeNumerically("==", 0.25))
	})

	It("falls back to defaults when the key prefix is absent", func() {
		v := viper.New()
		v.SetConfigType("yaml")
		Expect(v.ReadConfig(bytes.NewReader([]byte("other: {}\n")))).To(Succeed())

		cfg, err := damping.LoadConfig(v, "damping")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(damping.DefaultConfig()))
	})
})
