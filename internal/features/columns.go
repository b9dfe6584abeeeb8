// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package features

// Table names used in errors, logs and metric labels.
const (
	TableArticles     = "articles"
	TableCustomers    = "customers"
	TableTransactions = "transactions"
)

// Article columns.
const (
	ColArticleID          = "article_id"
	ColProdName           = "prod_name"
	ColDetailDesc         = "detail_desc"
	ColDetailDescLength   = "detail_desc_length"
	ColProdNameLength     = "prod_name_length"
	ColArticleDescription = "article_description"
	ColImageURL           = "image_url"
	ColEmbeddings         = "embeddings"
)

// Customer columns.
const (
	ColCustomerID       = "customer_id"
	ColClubMemberStatus = "club_member_status"
	ColAge              = "age"
	ColPostalCode       = "postal_code"
	ColAgeGroup         = "age_group"
)

// Transaction columns.
const (
	ColTDat           = "t_dat"
	ColPrice          = "price"
	ColSalesChannelID = "sales_channel_id"
	ColYear           = "year"
	ColMonth          = "month"
	ColDay            = "day"
	ColDayOfWeek      = "day_of_week"
	ColMonthSin       = "month_sin"
	ColMonthCos       = "month_cos"
)

// Data quality warning kinds, used as the kind label of
// recsys_data_quality_warnings_total.
const (
	WarnNullColumnDropped = "null_column_dropped"
	WarnNullAgeDropped    = "null_age_dropped"
	WarnAgeOutOfRange     = "age_out_of_range"
)
