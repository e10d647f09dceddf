package main

import (
	"fmt"

	"github.com/matst80/slask-homes/pkg/types"
	"github.com/spf13/cobra"
)

var encodeFlags struct {
	location     string
	propertyType string
	saleOrRent   string
	minPrice     int64
	maxPrice     int64
	minArea      int64
	maxArea      int64
	minBedrooms  int
	maxBedrooms  int
	minBathrooms int
	maxBathrooms int
	amenities    []string
	sort         string
	page         int
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Print the canonical query for a set of filters",
	Example: `  finder encode --type villa --min-price 1000000
  finder encode --deal rent --amenity pool --amenity garden --sort price_low`,
	Args: cobra.NoArgs,
	RunE: runEncode,
}

var canonicalCmd = &cobra.Command{
	Use:   "canonical [query]",
	Short: "Normalize a query string into its canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), types.Canonical(args[0]))
		return nil
	},
}

func init() {
	f := encodeCmd.Flags()
	f.StringVar(&encodeFlags.location, "location", "", "free text location")
	f.StringVar(&encodeFlags.propertyType, "type", "", "property type")
	f.StringVar(&encodeFlags.saleOrRent, "deal", "", "sale or rent")
	f.Int64Var(&encodeFlags.minPrice, "min-price", types.DefaultPriceMin, "minimum price")
	f.Int64Var(&encodeFlags.maxPrice, "max-price", types.DefaultPriceMax, "maximum price")
	f.Int64Var(&encodeFlags.minArea, "min-area", types.DefaultAreaMin, "minimum area")
	f.Int64Var(&encodeFlags.maxArea, "max-area", types.DefaultAreaMax, "maximum area")
	f.IntVar(&encodeFlags.minBedrooms, "min-beds", -1, "minimum bedrooms")
	f.IntVar(&encodeFlags.maxBedrooms, "max-beds", -1, "maximum bedrooms")
	f.IntVar(&encodeFlags.minBathrooms, "min-baths", -1, "minimum bathrooms")
	f.IntVar(&encodeFlags.maxBathrooms, "max-baths", -1, "maximum bathrooms")
	f.StringSliceVar(&encodeFlags.amenities, "amenity", nil, "required amenity, repeatable")
	f.StringVar(&encodeFlags.sort, "sort", "", "sort order")
	f.IntVar(&encodeFlags.page, "page", types.DefaultPage, "page number")
}

func flagUpdate(cmd *cobra.Command) types.FilterUpdate {
	f := cmd.Flags()
	u := types.FilterUpdate{}
	if f.Changed("location") {
		u.Location = types.Ptr(encodeFlags.location)
	}
	if f.Changed("type") {
		u.PropertyType = types.Ptr(types.ParsePropertyType(encodeFlags.propertyType))
	}
	if f.Changed("deal") {
		u.SaleOrRent = types.Ptr(types.ParseSaleOrRent(encodeFlags.saleOrRent))
	}
	if f.Changed("min-price") {
		u.PriceMin = types.Ptr(encodeFlags.minPrice)
	}
	if f.Changed("max-price") {
		u.PriceMax = types.Ptr(encodeFlags.maxPrice)
	}
	if f.Changed("min-area") {
		u.AreaMin = types.Ptr(encodeFlags.minArea)
	}
	if f.Changed("max-area") {
		u.AreaMax = types.Ptr(encodeFlags.maxArea)
	}
	if f.Changed("min-beds") {
		u.BedroomsMin = types.Ptr(encodeFlags.minBedrooms)
	}
	if f.Changed("max-beds") {
		u.BedroomsMax = types.Ptr(encodeFlags.maxBedrooms)
	}
	if f.Changed("min-baths") {
		u.BathroomsMin = types.Ptr(encodeFlags.minBathrooms)
	}
	if f.Changed("max-baths") {
		u.BathroomsMax = types.Ptr(encodeFlags.maxBathrooms)
	}
	if f.Changed("amenity") {
		u.Amenities = encodeFlags.amenities
	}
	if f.Changed("sort") {
		u.SortKey = types.Ptr(types.ParseSortKey(encodeFlags.sort))
	}
	if f.Changed("page") {
		u.Page = types.Ptr(encodeFlags.page)
	}
	return u
}

func runEncode(cmd *cobra.Command, args []string) error {
	model := flagUpdate(cmd).Apply(types.DefaultFilterModel()).Normalize()
	fmt.Fprintln(cmd.OutOrStdout(), types.Encode(model))
	return nil
}
