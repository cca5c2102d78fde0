package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"staydesk/internal/app/dto"
	pricingapp "staydesk/internal/app/handlers/pricing"
	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

type quoteOptions struct {
	profilePath string
	ratesPath   string
	rulesPath   string
	checkIn     string
	checkOut    string
	guests      int
}

func newQuoteCmd() *cobra.Command {
	opts := &quoteOptions{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a stay against a pricing profile and seasonal rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.profilePath, "profile", "", "pricing profile JSON file")
	flags.StringVar(&opts.ratesPath, "rates", "", "seasonal rates JSON file (array)")
	flags.StringVar(&opts.rulesPath, "rules", "", "rule table JSON overriding the defaults")
	flags.StringVar(&opts.checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	flags.StringVar(&opts.checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	flags.IntVar(&opts.guests, "guests", 0, "number of guests")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("check-in")
	_ = cmd.MarkFlagRequired("check-out")
	return cmd
}

func runQuote(cmd *cobra.Command, opts *quoteOptions) error {
	var profileCmd pricingapp.UpsertPricingProfileCommand
	if err := readJSON(opts.profilePath, &profileCmd); err != nil {
		return err
	}
	profile, err := profileCmd.Profile()
	if err != nil {
		return err
	}
	propertyID := domainproperties.PropertyID(profileCmd.PropertyID)

	var rates []domainpricing.SeasonalRate
	if opts.ratesPath != "" {
		var rateCmds []pricingapp.UpsertSeasonalRateCommand
		if err := readJSON(opts.ratesPath, &rateCmds); err != nil {
			return err
		}
		for _, rc := range rateCmds {
			if rc.PropertyID == "" {
				rc.PropertyID = string(propertyID)
			}
			rate, err := rc.SeasonalRate()
			if err != nil {
				return err
			}
			rates = append(rates, rate)
		}
	}

	rules := domainpricing.DefaultRules()
	if opts.rulesPath != "" {
		raw, err := os.ReadFile(opts.rulesPath)
		if err != nil {
			return err
		}
		rules = domainpricing.LoadRules(string(raw), cliLogger(cmd.ErrOrStderr()))
	}

	checkIn, err := daterange.ParseDate(opts.checkIn)
	if err != nil {
		return err
	}
	checkOut, err := daterange.ParseDate(opts.checkOut)
	if err != nil {
		return err
	}
	req, err := domainpricing.NewStayRequest(propertyID, checkIn, checkOut, opts.guests)
	if err != nil {
		return err
	}
	quote, err := domainpricing.NewEngine(rules).Quote(req, profile, rates)
	if err != nil {
		return err
	}

	if !quote.MinimumStay.MeetsRequirement {
		warnf(cmd.ErrOrStderr(), "stay of %d nights is below the %s minimum of %d nights",
			quote.MinimumStay.Nights, strings.ToLower(string(quote.MinimumStay.Source)), quote.MinimumStay.RequiredNights)
	}
	return writeJSON(cmd.OutOrStdout(), dto.MapRateQuote(string(propertyID), quote))
}
