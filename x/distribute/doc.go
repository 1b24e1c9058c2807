/*
Package distribute implements proportional token distributions.

A distribution owns a vault. During the registration window voters of a
stake registrar register as participants with the weight the registrar
guarantees to stay locked until the weight time. Once the window closes,
every participant can claim once, receiving the vault balance times its
weight over the total weight. The vault balance is fixed by the first
claim and rounding dust stays in the vault.

Phase is never stored. It is derived from the block time, shifted by the
distribution time offset, compared with the registration end.
*/
package distribute
